// Package websites provides the website submission, expert assignment,
// voting, publishing and certification endpoints.
package websites

import (
	"net/http"
	"strings"

	patternstore "github.com/dalemusser/vort/internal/app/store/patterns"
	userstore "github.com/dalemusser/vort/internal/app/store/users"
	websitestore "github.com/dalemusser/vort/internal/app/store/websites"
	"github.com/dalemusser/vort/internal/app/system/auth"
	"github.com/dalemusser/vort/internal/app/system/certid"
	"github.com/dalemusser/vort/internal/app/system/jsonutil"
	"github.com/dalemusser/vort/internal/app/system/mailer"
	"github.com/dalemusser/vort/internal/app/system/normalize"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// certificationAttempts bounds the retry loop when a generated
// certification id collides with an existing one.
const certificationAttempts = 5

// Handler handles website requests.
type Handler struct {
	websites *websitestore.Store
	users    *userstore.Store
	patterns *patternstore.Store
	mail     mailer.Sender
	appName  string
	baseURL  string
	logger   *zap.Logger
}

// NewHandler creates a websites handler. baseURL is the public address
// of the dashboard frontend, used in notification emails.
func NewHandler(websites *websitestore.Store, users *userstore.Store, patterns *patternstore.Store, mail mailer.Sender, appName, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		websites: websites,
		users:    users,
		patterns: patterns,
		mail:     mail,
		appName:  appName,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// Create handles POST /website.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID         string   `json:"userId"`
		BaseURL        string   `json:"baseUrl"`
		AdditionalURLs []string `json:"additionalUrls"`
		WebsiteName    string   `json:"websiteName"`
		Description    string   `json:"description"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	ownerID, err := primitive.ObjectIDFromHex(in.UserID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}
	if normalize.URL(in.BaseURL) == "" || strings.TrimSpace(in.WebsiteName) == "" {
		jsonutil.BadRequest(w, "baseUrl and websiteName are required")
		return
	}

	if _, err := h.users.GetByID(r.Context(), ownerID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("failed to load owner", zap.Error(err))
		jsonutil.InternalError(w, "failed to create website")
		return
	}

	created, err := h.websites.Create(r.Context(), models.Website{
		UserID:         ownerID,
		BaseURL:        in.BaseURL,
		AdditionalURLs: in.AdditionalURLs,
		WebsiteName:    strings.TrimSpace(in.WebsiteName),
		Description:    strings.TrimSpace(in.Description),
	})
	if err != nil {
		h.logger.Error("failed to create website", zap.Error(err))
		jsonutil.InternalError(w, "failed to create website")
		return
	}

	h.logger.Info("website created",
		zap.String("website_id", created.ID.Hex()),
		zap.String("user_id", ownerID.Hex()))
	jsonutil.Created(w, created)
}

// AssignExperts handles PUT /website/{websiteId}/assignExperts. The
// roster is replaced wholesale; every listed expert, primary included,
// must exist.
func (h *Handler) AssignExperts(w http.ResponseWriter, r *http.Request) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}

	var in struct {
		ExpertIDs       []string `json:"expertIds"`
		PrimaryExpertID string   `json:"primaryExpertId"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if len(in.ExpertIDs) == 0 || in.PrimaryExpertID == "" {
		jsonutil.BadRequest(w, "expertIds and primaryExpertId are required")
		return
	}

	primaryID, err := primitive.ObjectIDFromHex(in.PrimaryExpertID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid primary expert id")
		return
	}

	expertIDs := make([]primitive.ObjectID, 0, len(in.ExpertIDs))
	seen := map[primitive.ObjectID]bool{}
	for _, raw := range in.ExpertIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			jsonutil.BadRequest(w, "invalid expert id: "+raw)
			return
		}
		if !seen[id] {
			seen[id] = true
			expertIDs = append(expertIDs, id)
		}
	}
	if !seen[primaryID] {
		expertIDs = append(expertIDs, primaryID)
		seen[primaryID] = true
	}

	website, err := h.websites.GetByID(r.Context(), websiteID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "website not found")
			return
		}
		h.logger.Error("failed to load website", zap.Error(err))
		jsonutil.InternalError(w, "failed to assign experts")
		return
	}

	experts, err := h.users.GetByIDs(r.Context(), expertIDs)
	if err != nil {
		h.logger.Error("failed to load experts", zap.Error(err))
		jsonutil.InternalError(w, "failed to assign experts")
		return
	}
	if len(experts) != len(expertIDs) {
		jsonutil.NotFound(w, "one or more experts not found")
		return
	}

	if err := h.websites.AssignExperts(r.Context(), websiteID, expertIDs, primaryID); err != nil {
		h.logger.Error("failed to assign experts", zap.Error(err))
		jsonutil.InternalError(w, "failed to assign experts")
		return
	}

	h.logger.Info("experts assigned",
		zap.String("website_id", websiteID.Hex()),
		zap.Int("experts", len(expertIDs)),
		zap.String("primary_expert_id", primaryID.Hex()))

	// Assignment notifications are best-effort.
	for _, e := range experts {
		text, html := mailer.ExpertAssignedEmail(mailer.ExpertAssignedEmailData{
			AppName:      h.appName,
			ExpertName:   e.FullName(),
			WebsiteName:  website.WebsiteName,
			BaseURL:      website.BaseURL,
			IsPrimary:    e.ID == primaryID,
			DashboardURL: h.baseURL + "/website/" + websiteID.Hex(),
		})
		if err := h.mail.Send(mailer.Email{
			To:       e.Email,
			Subject:  "New review assignment: " + website.WebsiteName,
			TextBody: text,
			HTMLBody: html,
		}); err != nil {
			h.logger.Warn("assignment email failed",
				zap.String("expert_id", e.ID.Hex()),
				zap.Error(err))
		}
	}

	jsonutil.OK(w, map[string]string{"message": "experts assigned"})
}

// Get handles GET /website/{websiteId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}

	website, err := h.websites.GetByID(r.Context(), websiteID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "website not found")
			return
		}
		h.logger.Error("failed to load website", zap.Error(err))
		jsonutil.InternalError(w, "failed to load website")
		return
	}
	jsonutil.OK(w, website)
}

// List handles GET /website?userId=. Clients get the websites they
// submitted; experts get the websites they are assigned to.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(normalize.QueryParam(r.URL.Query().Get("userId")))
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		jsonutil.InternalError(w, "failed to list websites")
		return
	}

	var list []models.Website
	if u.Role == models.RoleExpert {
		list, err = h.websites.ListByExpert(r.Context(), userID)
	} else {
		list, err = h.websites.ListByUser(r.Context(), userID)
	}
	if err != nil {
		h.logger.Error("failed to list websites", zap.Error(err))
		jsonutil.InternalError(w, "failed to list websites")
		return
	}
	if list == nil {
		list = []models.Website{}
	}
	jsonutil.OK(w, list)
}

// UserWebsites pairs a user with the websites associated with them.
type UserWebsites struct {
	User     models.User      `json:"user"`
	Websites []models.Website `json:"websites"`
}

// UserTypeDetails handles GET /website/{userType}/details: every user
// of the given role together with their websites.
func (h *Handler) UserTypeDetails(w http.ResponseWriter, r *http.Request) {
	role := normalize.Role(chi.URLParam(r, "userType"))
	if !models.IsValidRole(role) {
		jsonutil.BadRequest(w, "userType must be client, expert or superadmin")
		return
	}

	usersOfRole, err := h.users.ListByRole(r.Context(), role)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		jsonutil.InternalError(w, "failed to load details")
		return
	}

	// Optional case/diacritic-insensitive name filter.
	if q := normalize.QueryParam(r.URL.Query().Get("q")); q != "" {
		qFold := text.Fold(q)
		filtered := usersOfRole[:0]
		for _, u := range usersOfRole {
			if strings.Contains(text.Fold(u.FirstName+" "+u.LastName), qFold) {
				filtered = append(filtered, u)
			}
		}
		usersOfRole = filtered
	}

	out := make([]UserWebsites, 0, len(usersOfRole))
	for _, u := range usersOfRole {
		var websites []models.Website
		if u.Role == models.RoleExpert {
			websites, err = h.websites.ListByExpert(r.Context(), u.ID)
		} else {
			websites, err = h.websites.ListByUser(r.Context(), u.ID)
		}
		if err != nil {
			h.logger.Error("failed to list websites", zap.Error(err))
			jsonutil.InternalError(w, "failed to load details")
			return
		}
		if websites == nil {
			websites = []models.Website{}
		}
		out = append(out, UserWebsites{User: u, Websites: websites})
	}
	jsonutil.OK(w, out)
}

// UpVote handles PUT /website/{websiteId}/upVote.
func (h *Handler) UpVote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, websitestore.VoteUp)
}

// DownVote handles PUT /website/{websiteId}/downVote.
func (h *Handler) DownVote(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, websitestore.VoteDown)
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request, dir websitestore.VoteDirection) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}

	claims, ok := auth.CurrentClaims(r)
	if !ok {
		jsonutil.Unauthorized(w, "authorization token not provided")
		return
	}

	up, down, err := h.websites.ToggleVote(r.Context(), websiteID, claims.UserID().Hex(), dir)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "website not found")
			return
		}
		h.logger.Error("failed to record vote", zap.Error(err))
		jsonutil.InternalError(w, "failed to record vote")
		return
	}
	jsonutil.OK(w, map[string]any{
		"upVotes":   up,
		"downVotes": down,
	})
}

// Publish handles PUT /website/{websiteId}/publish. Only the primary
// expert can publish, and only once every pattern finished
// verification. The website update commits before the notification
// email goes out; a failed email is logged, never surfaced as an error.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}

	var in struct {
		IsCertified    bool   `json:"isCertified"`
		ExpertFeedback string `json:"expertFeedback"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	in.ExpertFeedback = strings.TrimSpace(in.ExpertFeedback)

	website, err := h.websites.GetByID(r.Context(), websiteID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "website not found")
			return
		}
		h.logger.Error("failed to load website", zap.Error(err))
		jsonutil.InternalError(w, "failed to publish website")
		return
	}

	if website.IsCompleted {
		jsonutil.BadRequest(w, "website review is already completed")
		return
	}

	claims, ok := auth.CurrentClaims(r)
	if !ok || claims.UserID() != website.PrimaryExpertID {
		jsonutil.BadRequest(w, "only the primary expert is authorized to publish this website")
		return
	}

	allVerified, anyDark, err := h.patterns.AllVerified(r.Context(), websiteID)
	if err != nil {
		h.logger.Error("failed to check pattern verification", zap.Error(err))
		jsonutil.InternalError(w, "failed to publish website")
		return
	}
	if !allVerified {
		jsonutil.BadRequest(w, "all patterns must be verified before publishing")
		return
	}
	if in.IsCertified == anyDark {
		// The client-visible verdict must agree with the pattern
		// evidence.
		jsonutil.BadRequest(w, "certification flag does not match the verification results")
		return
	}
	if anyDark && in.ExpertFeedback == "" {
		jsonutil.BadRequest(w, "expert feedback is required when dark patterns were found")
		return
	}

	if err := h.websites.Publish(r.Context(), websiteID, !anyDark, in.ExpertFeedback); err != nil {
		h.logger.Error("failed to publish website", zap.Error(err))
		jsonutil.InternalError(w, "failed to publish website")
		return
	}

	h.logger.Info("website published",
		zap.String("website_id", websiteID.Hex()),
		zap.Bool("dark_pattern_free", !anyDark))

	h.notifyPublished(r, website, !anyDark, in.ExpertFeedback)

	jsonutil.OK(w, map[string]any{
		"message":           "website published",
		"isDarkPatternFree": !anyDark,
	})
}

func (h *Handler) notifyPublished(r *http.Request, website *models.Website, darkPatternFree bool, feedback string) {
	owner, err := h.users.GetByID(r.Context(), website.UserID)
	if err != nil {
		h.logger.Warn("publish notification skipped: owner lookup failed",
			zap.String("website_id", website.ID.Hex()),
			zap.Error(err))
		return
	}

	text, html := mailer.WebsitePublishedEmail(mailer.WebsitePublishedEmailData{
		AppName:         h.appName,
		ClientName:      owner.FullName(),
		WebsiteName:     website.WebsiteName,
		BaseURL:         website.BaseURL,
		DarkPatternFree: darkPatternFree,
		ExpertFeedback:  feedback,
		DashboardURL:    h.baseURL + "/website/" + website.ID.Hex(),
	})
	if err := h.mail.Send(mailer.Email{
		To:       owner.Email,
		Subject:  "Your website " + website.WebsiteName + " has been published",
		TextBody: text,
		HTMLBody: html,
	}); err != nil {
		h.logger.Warn("publish notification email failed",
			zap.String("website_id", website.ID.Hex()),
			zap.Error(err))
	}
}

// GenerateCertification handles GET /website/{websiteId}/generateCertification.
// Only a completed, dark-pattern-free website earns a certification id,
// and it is issued exactly once.
func (h *Handler) GenerateCertification(w http.ResponseWriter, r *http.Request) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}

	website, err := h.websites.GetByID(r.Context(), websiteID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "website not found")
			return
		}
		h.logger.Error("failed to load website", zap.Error(err))
		jsonutil.InternalError(w, "failed to generate certification")
		return
	}

	if !website.IsCompleted || !website.IsDarkPatternFree {
		jsonutil.BadRequest(w, "website is not eligible for certification")
		return
	}
	if website.CertificationID != "" {
		jsonutil.BadRequest(w, "website already has a certification id")
		return
	}

	for attempt := 0; attempt < certificationAttempts; attempt++ {
		code, err := certid.New()
		if err != nil {
			h.logger.Error("failed to generate certification id", zap.Error(err))
			jsonutil.InternalError(w, "failed to generate certification")
			return
		}

		err = h.websites.SetCertificationID(r.Context(), websiteID, code)
		switch err {
		case nil:
			h.logger.Info("certification issued",
				zap.String("website_id", websiteID.Hex()),
				zap.String("certification_id", code))
			jsonutil.OK(w, map[string]string{"certificationId": code})
			return
		case websitestore.ErrDuplicateCertificationID:
			continue
		case websitestore.ErrAlreadyCertified:
			jsonutil.BadRequest(w, "website already has a certification id")
			return
		default:
			h.logger.Error("failed to store certification id", zap.Error(err))
			jsonutil.InternalError(w, "failed to generate certification")
			return
		}
	}

	h.logger.Error("certification id generation exhausted retries",
		zap.String("website_id", websiteID.Hex()),
		zap.Int("attempts", certificationAttempts))
	jsonutil.InternalError(w, "failed to generate a unique certification id")
}

// ClientKpi handles GET /website/clientKpi/{clientId}.
func (h *Handler) ClientKpi(w http.ResponseWriter, r *http.Request) {
	clientID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "clientId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid client id")
		return
	}

	u, err := h.users.GetByID(r.Context(), clientID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		jsonutil.InternalError(w, "failed to load KPIs")
		return
	}
	if u.Role != models.RoleClient {
		jsonutil.BadRequest(w, "user is not a client")
		return
	}

	kpi, err := h.websites.CountForClient(r.Context(), clientID)
	if err != nil {
		h.logger.Error("failed to count client websites", zap.Error(err))
		jsonutil.InternalError(w, "failed to load KPIs")
		return
	}
	jsonutil.OK(w, kpi)
}

// ExpertKpi handles GET /website/expertKpi/{expertId}.
func (h *Handler) ExpertKpi(w http.ResponseWriter, r *http.Request) {
	expertID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "expertId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid expert id")
		return
	}

	u, err := h.users.GetByID(r.Context(), expertID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		jsonutil.InternalError(w, "failed to load KPIs")
		return
	}
	if u.Role != models.RoleExpert {
		jsonutil.BadRequest(w, "user is not an expert")
		return
	}

	kpi, err := h.websites.CountForExpert(r.Context(), expertID)
	if err != nil {
		h.logger.Error("failed to count expert websites", zap.Error(err))
		jsonutil.InternalError(w, "failed to load KPIs")
		return
	}
	kpi.TotalPatternsCreated, err = h.patterns.CountByCreator(r.Context(), expertID)
	if err != nil {
		h.logger.Error("failed to count expert patterns", zap.Error(err))
		jsonutil.InternalError(w, "failed to load KPIs")
		return
	}
	jsonutil.OK(w, kpi)
}
