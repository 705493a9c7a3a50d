package websites

import (
	"errors"
	"net/http"
	"testing"

	patternstore "github.com/dalemusser/vort/internal/app/store/patterns"
	userstore "github.com/dalemusser/vort/internal/app/store/users"
	websitestore "github.com/dalemusser/vort/internal/app/store/websites"
	"github.com/dalemusser/vort/internal/app/system/mailer"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/dalemusser/vort/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeMailer records outgoing emails instead of talking to SMTP.
type fakeMailer struct {
	sent []mailer.Email
	err  error
}

func (f *fakeMailer) Send(e mailer.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

type fixture struct {
	handler  *Handler
	router   *chi.Mux
	mail     *fakeMailer
	users    *userstore.Store
	websites *websitestore.Store
	patterns *patternstore.Store
}

func newFixture(t *testing.T, db *mongo.Database) *fixture {
	t.Helper()
	f := &fixture{
		mail:     &fakeMailer{},
		users:    userstore.New(db),
		websites: websitestore.New(db),
		patterns: patternstore.New(db),
	}
	f.handler = NewHandler(f.websites, f.users, f.patterns, f.mail, "Vort", "https://vort.example.com", zap.NewNop())

	// Routes without the token middleware; tests inject claims directly.
	f.router = chi.NewRouter()
	f.router.Post("/website", f.handler.Create)
	f.router.Get("/website", f.handler.List)
	f.router.Get("/website/clientKpi/{clientId}", f.handler.ClientKpi)
	f.router.Get("/website/expertKpi/{expertId}", f.handler.ExpertKpi)
	f.router.Get("/website/{userType:client|expert|superadmin}/details", f.handler.UserTypeDetails)
	f.router.Put("/website/{websiteId}/assignExperts", f.handler.AssignExperts)
	f.router.Put("/website/{websiteId}/upVote", f.handler.UpVote)
	f.router.Put("/website/{websiteId}/downVote", f.handler.DownVote)
	f.router.Put("/website/{websiteId}/publish", f.handler.Publish)
	f.router.Get("/website/{websiteId}/generateCertification", f.handler.GenerateCertification)
	f.router.Get("/website/{websiteId}", f.handler.Get)
	return f
}

func (f *fixture) createUser(t *testing.T, email, role string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := f.users.Create(ctx, models.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) createWebsite(t *testing.T, ownerID primitive.ObjectID) models.Website {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w, err := f.websites.Create(ctx, models.Website{
		UserID:      ownerID,
		BaseURL:     "https://shop.example.com",
		WebsiteName: "Example Shop",
	})
	if err != nil {
		t.Fatalf("create website: %v", err)
	}
	return w
}

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(t, db)
	owner := f.createUser(t, "owner@example.com", models.RoleClient)

	t.Run("success", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/website", map[string]any{
			"userId":      owner.ID.Hex(),
			"baseUrl":     "https://shop.example.com",
			"websiteName": "Example Shop",
			"description": "An online shop",
		})
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusCreated)
		rec.AssertContains(t, "inProgress")
	})

	t.Run("missing owner 404", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/website", map[string]any{
			"userId":      primitive.NewObjectID().Hex(),
			"baseUrl":     "https://shop.example.com",
			"websiteName": "Example Shop",
		})
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusNotFound)
	})

	t.Run("missing required fields 400", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/website", map[string]any{
			"userId": owner.ID.Hex(),
		})
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusBadRequest)
	})
}

func TestAssignExperts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(t, db)
	owner := f.createUser(t, "owner@example.com", models.RoleClient)
	e1 := f.createUser(t, "e1@example.com", models.RoleExpert)
	e2 := f.createUser(t, "e2@example.com", models.RoleExpert)
	w := f.createWebsite(t, owner.ID)

	t.Run("success and notification", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/website/"+w.ID.Hex()+"/assignExperts", map[string]any{
			"expertIds":       []string{e1.ID.Hex(), e2.ID.Hex()},
			"primaryExpertId": e1.ID.Hex(),
		})
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusOK)

		ctx, cancel := testutil.TestContext()
		defer cancel()
		got, err := f.websites.GetByID(ctx, w.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if len(got.ExpertIDs) != 2 || got.PrimaryExpertID != e1.ID {
			t.Errorf("roster = %v primary = %v", got.ExpertIDs, got.PrimaryExpertID)
		}
		if len(f.mail.sent) != 2 {
			t.Errorf("assignment emails sent = %d, want 2", len(f.mail.sent))
		}
	})

	t.Run("unknown expert 404", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/website/"+w.ID.Hex()+"/assignExperts", map[string]any{
			"expertIds":       []string{primitive.NewObjectID().Hex()},
			"primaryExpertId": e1.ID.Hex(),
		})
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusNotFound)
	})

	t.Run("unknown website 404", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/website/"+primitive.NewObjectID().Hex()+"/assignExperts", map[string]any{
			"expertIds":       []string{e1.ID.Hex()},
			"primaryExpertId": e1.ID.Hex(),
		})
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusNotFound)
	})
}

func TestVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(t, db)
	owner := f.createUser(t, "owner@example.com", models.RoleClient)
	w := f.createWebsite(t, owner.ID)
	voter := testutil.ClientUser()

	upvote := func() *testutil.ResponseRecorder {
		req := testutil.NewRequest(http.MethodPut, "/website/"+w.ID.Hex()+"/upVote")
		req = testutil.WithUser(req, voter)
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := upvote()
	rec.AssertStatus(t, http.StatusOK)
	var out struct {
		UpVotes   []string `json:"upVotes"`
		DownVotes []string `json:"downVotes"`
	}
	rec.DecodeJSON(t, &out)
	if len(out.UpVotes) != 1 || out.UpVotes[0] != voter.ID.Hex() {
		t.Errorf("upVotes = %v", out.UpVotes)
	}

	// Same direction again toggles the vote off.
	rec = upvote()
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &out)
	if len(out.UpVotes) != 0 {
		t.Errorf("upVotes after toggle = %v", out.UpVotes)
	}
}

func TestPublish(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(t, db)
	owner := f.createUser(t, "owner@example.com", models.RoleClient)
	primary := f.createUser(t, "primary@example.com", models.RoleExpert)
	second := f.createUser(t, "second@example.com", models.RoleExpert)

	setup := func(t *testing.T) models.Website {
		w := f.createWebsite(t, owner.ID)
		ctx, cancel := testutil.TestContext()
		defer cancel()
		if err := f.websites.AssignExperts(ctx, w.ID, []primitive.ObjectID{primary.ID, second.ID}, primary.ID); err != nil {
			t.Fatalf("AssignExperts: %v", err)
		}
		return w
	}

	publish := func(w models.Website, user testutil.TestUser, body map[string]any) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/website/"+w.ID.Hex()+"/publish", body)
		req = testutil.WithUser(req, user)
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("only primary expert may publish", func(t *testing.T) {
		w := setup(t)
		rec := publish(w, testutil.UserFrom(second), map[string]any{"isCertified": true})
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertContains(t, "primary expert")
	})

	t.Run("open patterns block publishing", func(t *testing.T) {
		w := setup(t)
		ctx, cancel := testutil.TestContext()
		defer cancel()
		if _, err := f.patterns.Create(ctx, models.Pattern{
			WebsiteID:         w.ID,
			PatternType:       "Urgency",
			Description:       "Fake countdown",
			DetectedURL:       "https://shop.example.com",
			CreatedByExpertID: primary.ID,
		}, []primitive.ObjectID{primary.ID}); err != nil {
			t.Fatalf("pattern create: %v", err)
		}

		rec := publish(w, testutil.UserFrom(primary), map[string]any{"isCertified": true})
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertContains(t, "verified")
	})

	t.Run("verdict must match evidence", func(t *testing.T) {
		w := setup(t)
		// No patterns at all: anyDark is false, so isCertified=false is
		// inconsistent.
		rec := publish(w, testutil.UserFrom(primary), map[string]any{"isCertified": false})
		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("dark verdict requires feedback", func(t *testing.T) {
		w := setup(t)
		ctx, cancel := testutil.TestContext()
		defer cancel()
		p, err := f.patterns.Create(ctx, models.Pattern{
			WebsiteID:         w.ID,
			PatternType:       "Hidden Costs",
			Description:       "Surprise fees",
			DetectedURL:       "https://shop.example.com/checkout",
			CreatedByExpertID: primary.ID,
		}, []primitive.ObjectID{primary.ID})
		if err != nil {
			t.Fatalf("pattern create: %v", err)
		}
		if _, err := f.patterns.RecordVerdict(ctx, w.ID, p.ID, primary.ID, true); err != nil {
			t.Fatalf("RecordVerdict: %v", err)
		}

		rec := publish(w, testutil.UserFrom(primary), map[string]any{"isCertified": false})
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertContains(t, "feedback")

		rec = publish(w, testutil.UserFrom(primary), map[string]any{
			"isCertified":    false,
			"expertFeedback": "Checkout hides mandatory fees until the last step.",
		})
		rec.AssertStatus(t, http.StatusOK)
	})

	t.Run("clean publish sends notification and completes", func(t *testing.T) {
		w := setup(t)
		f.mail.sent = nil
		rec := publish(w, testutil.UserFrom(primary), map[string]any{"isCertified": true})
		rec.AssertStatus(t, http.StatusOK)

		ctx, cancel := testutil.TestContext()
		defer cancel()
		got, err := f.websites.GetByID(ctx, w.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !got.IsCompleted || !got.IsDarkPatternFree || got.Phase != models.WebsitePhasePublished {
			t.Errorf("website after publish = %+v", got)
		}
		if len(f.mail.sent) != 1 || f.mail.sent[0].To != owner.Email {
			t.Errorf("notification emails = %+v", f.mail.sent)
		}

		// Publishing twice is rejected.
		rec = publish(w, testutil.UserFrom(primary), map[string]any{"isCertified": true})
		rec.AssertStatus(t, http.StatusBadRequest)
		rec.AssertContains(t, "already completed")
	})

	t.Run("email failure does not fail the publish", func(t *testing.T) {
		w := setup(t)
		f.mail.err = errors.New("smtp down")
		defer func() { f.mail.err = nil }()

		rec := publish(w, testutil.UserFrom(primary), map[string]any{"isCertified": true})
		rec.AssertStatus(t, http.StatusOK)

		ctx, cancel := testutil.TestContext()
		defer cancel()
		got, err := f.websites.GetByID(ctx, w.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !got.IsCompleted {
			t.Error("publish not committed despite email failure")
		}
	})
}

func TestGenerateCertification(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(t, db)
	owner := f.createUser(t, "owner@example.com", models.RoleClient)

	generate := func(w models.Website) *testutil.ResponseRecorder {
		req := testutil.NewRequest(http.MethodGet, "/website/"+w.ID.Hex()+"/generateCertification")
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("ineligible website 400", func(t *testing.T) {
		w := f.createWebsite(t, owner.ID)
		rec := generate(w)
		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("issues once", func(t *testing.T) {
		w := f.createWebsite(t, owner.ID)
		ctx, cancel := testutil.TestContext()
		defer cancel()
		if err := f.websites.Publish(ctx, w.ID, true, ""); err != nil {
			t.Fatalf("Publish: %v", err)
		}

		rec := generate(w)
		rec.AssertStatus(t, http.StatusOK)
		var out struct {
			CertificationID string `json:"certificationId"`
		}
		rec.DecodeJSON(t, &out)
		if len(out.CertificationID) != 12 {
			t.Errorf("certificationId = %q, want 12 chars", out.CertificationID)
		}

		got, err := f.websites.GetByID(ctx, w.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.CertificationID != out.CertificationID {
			t.Errorf("stored id %q != returned id %q", got.CertificationID, out.CertificationID)
		}

		// Second request must not mint another id.
		rec = generate(w)
		rec.AssertStatus(t, http.StatusBadRequest)
	})
}

func TestKpis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(t, db)
	client := f.createUser(t, "client@example.com", models.RoleClient)
	expert := f.createUser(t, "expert@example.com", models.RoleExpert)
	f.createWebsite(t, client.ID)

	t.Run("client kpi", func(t *testing.T) {
		req := testutil.NewRequest(http.MethodGet, "/website/clientKpi/"+client.ID.Hex())
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusOK)

		var kpi websitestore.ClientKPI
		rec.DecodeJSON(t, &kpi)
		if kpi.TotalWebsites != 1 || kpi.WebsitesInProgress != 1 {
			t.Errorf("kpi = %+v", kpi)
		}
	})

	t.Run("client kpi rejects non-client target", func(t *testing.T) {
		req := testutil.NewRequest(http.MethodGet, "/website/clientKpi/"+expert.ID.Hex())
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusBadRequest)
	})

	t.Run("expert kpi", func(t *testing.T) {
		req := testutil.NewRequest(http.MethodGet, "/website/expertKpi/"+expert.ID.Hex())
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusOK)

		var kpi websitestore.ExpertKPI
		rec.DecodeJSON(t, &kpi)
		if kpi.TotalWebsitesAssigned != 0 || kpi.TotalPatternsCreated != 0 {
			t.Errorf("kpi = %+v", kpi)
		}
	})
}

func TestUserTypeDetails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	f := newFixture(t, db)
	client := f.createUser(t, "client@example.com", models.RoleClient)
	f.createWebsite(t, client.ID)
	f.createWebsite(t, client.ID)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := f.users.Create(ctx, models.User{
		FirstName: "Renée", LastName: "Moreau",
		Email: "renee@example.com", PasswordHash: "hash", Role: models.RoleClient,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	t.Run("lists users of a role with websites", func(t *testing.T) {
		req := testutil.NewRequest(http.MethodGet, "/website/client/details")
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusOK)

		var out []UserWebsites
		rec.DecodeJSON(t, &out)
		if len(out) != 2 {
			t.Fatalf("users = %d, want 2", len(out))
		}
		for _, uw := range out {
			if uw.User.ID == client.ID && len(uw.Websites) != 2 {
				t.Errorf("websites = %d, want 2", len(uw.Websites))
			}
		}
	})

	t.Run("name filter folds case and diacritics", func(t *testing.T) {
		req := testutil.NewRequest(http.MethodGet, "/website/client/details?q=renee")
		rec := testutil.NewRecorder()
		f.router.ServeHTTP(rec, req)
		rec.AssertStatus(t, http.StatusOK)

		var out []UserWebsites
		rec.DecodeJSON(t, &out)
		if len(out) != 1 {
			t.Fatalf("users = %d, want 1", len(out))
		}
		if out[0].User.Email != "renee@example.com" {
			t.Fatalf("matched %q, want renee@example.com", out[0].User.Email)
		}
	})
}
