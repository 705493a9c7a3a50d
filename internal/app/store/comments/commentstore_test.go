package commentstore

import (
	"testing"

	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/dalemusser/vort/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pattern := primitive.NewObjectID()
	website := primitive.NewObjectID()
	expert := primitive.NewObjectID()

	first, err := store.Create(ctx, models.Comment{
		WebsiteID: website,
		PatternID: pattern,
		ExpertID:  expert,
		Content:   "The countdown resets on page reload.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Replies == nil {
		t.Error("replies not initialized to empty slice")
	}

	if _, err := store.Create(ctx, models.Comment{
		WebsiteID: website,
		PatternID: pattern,
		ExpertID:  expert,
		Content:   "Checked on mobile, same behavior.",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A comment on another pattern stays out of this thread.
	if _, err := store.Create(ctx, models.Comment{
		WebsiteID: website,
		PatternID: primitive.NewObjectID(),
		ExpertID:  expert,
		Content:   "Unrelated.",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	thread, err := store.ListByPattern(ctx, pattern)
	if err != nil {
		t.Fatalf("ListByPattern: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("thread len = %d, want 2", len(thread))
	}
	if thread[0].ID != first.ID {
		t.Error("thread not sorted oldest first")
	}
}

func TestAppendReply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := store.Create(ctx, models.Comment{
		WebsiteID: primitive.NewObjectID(),
		PatternID: primitive.NewObjectID(),
		ExpertID:  primitive.NewObjectID(),
		Content:   "Is this intentional or a bug?",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := store.AppendReply(ctx, c.ID, models.Reply{
		ExpertID: primitive.NewObjectID(),
		Content:  "Intentional. The timer is hard-coded.",
	})
	if err != nil {
		t.Fatalf("AppendReply: %v", err)
	}
	if len(updated.Replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(updated.Replies))
	}
	if updated.Replies[0].CreatedAt.IsZero() {
		t.Error("reply timestamp not set")
	}

	if _, err := store.AppendReply(ctx, primitive.NewObjectID(), models.Reply{
		ExpertID: primitive.NewObjectID(),
		Content:  "lost",
	}); err != mongo.ErrNoDocuments {
		t.Errorf("missing comment: err = %v, want mongo.ErrNoDocuments", err)
	}
}
