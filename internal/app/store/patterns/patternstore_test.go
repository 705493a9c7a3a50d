package patternstore

import (
	"testing"

	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/dalemusser/vort/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateSnapshotsRoster(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e1, e2 := primitive.NewObjectID(), primitive.NewObjectID()
	p, err := store.Create(ctx, models.Pattern{
		WebsiteID:         primitive.NewObjectID(),
		PatternType:       "Confirmshaming",
		Description:       "Guilt-trip copy on the unsubscribe dialog",
		DetectedURL:       "https://example.com/unsubscribe",
		CreatedByExpertID: e1,
	}, []primitive.ObjectID{e1, e2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if p.PatternPhase != models.PatternPhaseInProgress {
		t.Errorf("phase = %q, want inProgress", p.PatternPhase)
	}
	if len(p.Verifications) != 2 {
		t.Fatalf("verifications = %d, want 2", len(p.Verifications))
	}
	for _, v := range p.Verifications {
		if v.Phase != models.VerificationNotVerified {
			t.Errorf("slot %v phase = %q, want notVerified", v.ExpertID, v.Phase)
		}
	}
}

func TestCreateMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	website := primitive.NewObjectID()
	creator := primitive.NewObjectID()
	roster := []primitive.ObjectID{primitive.NewObjectID()}

	batch := []models.Pattern{
		{WebsiteID: website, PatternType: "Sneaking", Description: "a", DetectedURL: "https://example.com/a", CreatedByExpertID: creator, IsAutoGenerated: true},
		{WebsiteID: website, PatternType: "Urgency", Description: "b", DetectedURL: "https://example.com/b", CreatedByExpertID: creator, IsAutoGenerated: true},
	}
	created, err := store.CreateMany(ctx, batch, roster)
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %d, want 2", len(created))
	}

	list, err := store.ListByWebsite(ctx, website)
	if err != nil {
		t.Fatalf("ListByWebsite: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %d, want 2", len(list))
	}
	for _, p := range list {
		if !p.IsAutoGenerated {
			t.Error("IsAutoGenerated not preserved")
		}
		if len(p.Verifications) != 1 {
			t.Errorf("verifications = %d, want 1", len(p.Verifications))
		}
	}

	count, err := store.CountByCreator(ctx, creator)
	if err != nil {
		t.Fatalf("CountByCreator: %v", err)
	}
	if count != 2 {
		t.Errorf("CountByCreator = %d, want 2", count)
	}
}

func TestRecordVerdict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	website := primitive.NewObjectID()
	e1, e2 := primitive.NewObjectID(), primitive.NewObjectID()
	p, err := store.Create(ctx, models.Pattern{
		WebsiteID:         website,
		PatternType:       "Hidden Costs",
		Description:       "Fees appear only at the last checkout step",
		DetectedURL:       "https://example.com/checkout",
		CreatedByExpertID: e1,
	}, []primitive.ObjectID{e1, e2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// First verdict: pattern stays in progress.
	got, err := store.RecordVerdict(ctx, website, p.ID, e1, true)
	if err != nil {
		t.Fatalf("RecordVerdict: %v", err)
	}
	if got.PatternPhase != models.PatternPhaseInProgress {
		t.Errorf("phase after first verdict = %q", got.PatternPhase)
	}
	if got.IsPatternExists {
		t.Error("is_pattern_exists must stay false until verified")
	}

	// Second verdict closes the review; one confirmation is enough.
	got, err = store.RecordVerdict(ctx, website, p.ID, e2, false)
	if err != nil {
		t.Fatalf("RecordVerdict: %v", err)
	}
	if got.PatternPhase != models.PatternPhaseVerified {
		t.Errorf("phase = %q, want verified", got.PatternPhase)
	}
	if !got.IsPatternExists {
		t.Error("is_pattern_exists = false, want true (e1 confirmed)")
	}

	// A verified pattern never reverts.
	if _, err := store.RecordVerdict(ctx, website, p.ID, e1, false); err != ErrAlreadyVerified {
		t.Errorf("err = %v, want ErrAlreadyVerified", err)
	}
}

func TestRecordVerdictErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	website := primitive.NewObjectID()
	e1 := primitive.NewObjectID()
	p, err := store.Create(ctx, models.Pattern{
		WebsiteID:         website,
		PatternType:       "Nagging",
		Description:       "Repeated modal prompts",
		DetectedURL:       "https://example.com",
		CreatedByExpertID: e1,
	}, []primitive.ObjectID{e1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Wrong website scope.
	if _, err := store.RecordVerdict(ctx, primitive.NewObjectID(), p.ID, e1, true); err != mongo.ErrNoDocuments {
		t.Errorf("wrong website: err = %v, want mongo.ErrNoDocuments", err)
	}

	// Expert not on the snapshot.
	if _, err := store.RecordVerdict(ctx, website, p.ID, primitive.NewObjectID(), true); err != ErrNoVerificationSlot {
		t.Errorf("off-roster expert: err = %v, want ErrNoVerificationSlot", err)
	}
}

func TestAllVerified(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	website := primitive.NewObjectID()
	e1 := primitive.NewObjectID()

	// Vacuously true with no patterns.
	all, anyDark, err := store.AllVerified(ctx, website)
	if err != nil {
		t.Fatalf("AllVerified: %v", err)
	}
	if !all || anyDark {
		t.Errorf("empty website: all=%v anyDark=%v", all, anyDark)
	}

	p, err := store.Create(ctx, models.Pattern{
		WebsiteID:         website,
		PatternType:       "Urgency",
		Description:       "Fake countdown",
		DetectedURL:       "https://example.com",
		CreatedByExpertID: e1,
	}, []primitive.ObjectID{e1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, _, err = store.AllVerified(ctx, website)
	if err != nil {
		t.Fatalf("AllVerified: %v", err)
	}
	if all {
		t.Error("all = true with an open pattern")
	}

	if _, err := store.RecordVerdict(ctx, website, p.ID, e1, true); err != nil {
		t.Fatalf("RecordVerdict: %v", err)
	}
	all, anyDark, err = store.AllVerified(ctx, website)
	if err != nil {
		t.Fatalf("AllVerified: %v", err)
	}
	if !all || !anyDark {
		t.Errorf("after verdict: all=%v anyDark=%v", all, anyDark)
	}
}

func TestAppendImageKeys(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e1 := primitive.NewObjectID()
	p, err := store.Create(ctx, models.Pattern{
		WebsiteID:         primitive.NewObjectID(),
		PatternType:       "Sneaking",
		Description:       "Pre-ticked add-on",
		DetectedURL:       "https://example.com/cart",
		CreatedByExpertID: e1,
	}, []primitive.ObjectID{e1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.AppendImageKeys(ctx, p.ID, []string{"k1_a.png", "k2_b.png"}); err != nil {
		t.Fatalf("AppendImageKeys: %v", err)
	}
	if err := store.AppendImageKeys(ctx, p.ID, []string{"k3_c.png"}); err != nil {
		t.Fatalf("AppendImageKeys: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.PatternImageKeys) != 3 {
		t.Errorf("image keys = %v, want 3 entries", got.PatternImageKeys)
	}

	if err := store.AppendImageKeys(ctx, primitive.NewObjectID(), []string{"x"}); err != mongo.ErrNoDocuments {
		t.Errorf("missing pattern: err = %v, want mongo.ErrNoDocuments", err)
	}
}
