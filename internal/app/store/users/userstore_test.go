package userstore

import (
	"testing"

	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/dalemusser/vort/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FirstName:    "  Ada ",
		LastName:     "Lovelace",
		Email:        "Ada@Example.COM",
		PasswordHash: "hash",
		Role:         "Client",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}
	if created.Role != models.RoleClient {
		t.Errorf("role not normalized: %q", created.Role)
	}
	if created.FirstName != "Ada" {
		t.Errorf("first name not trimmed: %q", created.FirstName)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != created.Email {
		t.Errorf("GetByID email = %q, want %q", got.Email, created.Email)
	}
	if got.FullName() != "Ada Lovelace" {
		t.Errorf("FullName() = %q", got.FullName())
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := models.User{
		FirstName:    "First",
		LastName:     "User",
		Email:        "dup@example.com",
		PasswordHash: "hash",
		Role:         models.RoleClient,
	}
	if _, err := store.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same email, different case and role: still a duplicate.
	u.Email = "DUP@example.com"
	u.Role = models.RoleExpert
	if _, err := store.Create(ctx, u); err != ErrDuplicateEmail {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestCreateInvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		FirstName:    "Bad",
		LastName:     "Role",
		Email:        "bad@example.com",
		PasswordHash: "hash",
		Role:         "admin",
	})
	if err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestGetByEmailAndRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FirstName:    "Eve",
		LastName:     "Expert",
		Email:        "eve@example.com",
		PasswordHash: "hash",
		Role:         models.RoleExpert,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByEmailAndRole(ctx, "EVE@example.com", "expert")
	if err != nil {
		t.Fatalf("GetByEmailAndRole: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got id %v, want %v", got.ID, created.ID)
	}

	// Right email, wrong role: a client lookup must not match an expert.
	if _, err := store.GetByEmailAndRole(ctx, "eve@example.com", models.RoleClient); err != mongo.ErrNoDocuments {
		t.Errorf("err = %v, want mongo.ErrNoDocuments", err)
	}
}

func TestListByRoleAndExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, u := range []models.User{
		{FirstName: "A", LastName: "One", Email: "a@example.com", PasswordHash: "h", Role: models.RoleExpert},
		{FirstName: "B", LastName: "Two", Email: "b@example.com", PasswordHash: "h", Role: models.RoleExpert},
		{FirstName: "C", LastName: "Three", Email: "c@example.com", PasswordHash: "h", Role: models.RoleClient},
	} {
		if _, err := store.Create(ctx, u); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	experts, err := store.ListByRole(ctx, models.RoleExpert)
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(experts) != 2 {
		t.Errorf("len(experts) = %d, want 2", len(experts))
	}

	ok, err := store.ExistsWithRole(ctx, models.RoleSuperAdmin)
	if err != nil {
		t.Fatalf("ExistsWithRole: %v", err)
	}
	if ok {
		t.Error("ExistsWithRole(superadmin) = true, want false")
	}

	ok, err = store.ExistsWithRole(ctx, models.RoleClient)
	if err != nil {
		t.Fatalf("ExistsWithRole: %v", err)
	}
	if !ok {
		t.Error("ExistsWithRole(client) = false, want true")
	}
}
