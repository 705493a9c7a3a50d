// Package patterns provides the dark-pattern finding endpoints:
// manual and automated pattern submission, verification verdicts,
// screenshot upload and image streaming.
package patterns

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	commentstore "github.com/dalemusser/vort/internal/app/store/comments"
	patternstore "github.com/dalemusser/vort/internal/app/store/patterns"
	userstore "github.com/dalemusser/vort/internal/app/store/users"
	websitestore "github.com/dalemusser/vort/internal/app/store/websites"
	"github.com/dalemusser/vort/internal/app/system/jsonutil"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// maxUploadBytes caps a single screenshot upload request.
const maxUploadBytes = 32 << 20 // 32 MiB

// Handler handles pattern requests.
type Handler struct {
	patterns     *patternstore.Store
	websites     *websitestore.Store
	users        *userstore.Store
	comments     *commentstore.Store
	files        storage.Store
	certAssetKey string
	logger       *zap.Logger
}

// NewHandler creates a patterns handler. certAssetKey is the object
// storage key of the static certificate image served on the public
// certificate endpoint.
func NewHandler(patterns *patternstore.Store, websites *websitestore.Store, users *userstore.Store, comments *commentstore.Store, files storage.Store, certAssetKey string, logger *zap.Logger) *Handler {
	return &Handler{
		patterns:     patterns,
		websites:     websites,
		users:        users,
		comments:     comments,
		files:        files,
		certAssetKey: certAssetKey,
		logger:       logger,
	}
}

type patternInput struct {
	PatternType       string `json:"patternType"`
	Description       string `json:"description"`
	DetectedURL       string `json:"detectedUrl"`
	CreatedByExpertID string `json:"createdByExpertId"`
}

func (in *patternInput) validate() string {
	if strings.TrimSpace(in.PatternType) == "" {
		return "patternType is required"
	}
	if strings.TrimSpace(in.Description) == "" {
		return "description is required"
	}
	if strings.TrimSpace(in.DetectedURL) == "" {
		return "detectedUrl is required"
	}
	return ""
}

// Add handles PUT /website/{websiteId}/pattern. The creator must be on
// the website's expert roster; the roster is snapshotted into the
// pattern's verification slots.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}

	var in patternInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if msg := in.validate(); msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	creatorID, err := primitive.ObjectIDFromHex(in.CreatedByExpertID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid expert id")
		return
	}

	website, err := h.websites.GetByID(r.Context(), websiteID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "website not found")
			return
		}
		h.logger.Error("failed to load website", zap.Error(err))
		jsonutil.InternalError(w, "failed to add pattern")
		return
	}

	if _, err := h.users.GetByID(r.Context(), creatorID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "expert not found")
			return
		}
		h.logger.Error("failed to load expert", zap.Error(err))
		jsonutil.InternalError(w, "failed to add pattern")
		return
	}
	if !onRoster(website.ExpertIDs, creatorID) {
		jsonutil.BadRequest(w, "expert is not assigned to this website")
		return
	}

	created, err := h.patterns.Create(r.Context(), models.Pattern{
		WebsiteID:         websiteID,
		PatternType:       strings.TrimSpace(in.PatternType),
		Description:       strings.TrimSpace(in.Description),
		DetectedURL:       strings.TrimSpace(in.DetectedURL),
		CreatedByExpertID: creatorID,
	}, website.ExpertIDs)
	if err != nil {
		h.logger.Error("failed to create pattern", zap.Error(err))
		jsonutil.InternalError(w, "failed to add pattern")
		return
	}

	h.logger.Info("pattern added",
		zap.String("website_id", websiteID.Hex()),
		zap.String("pattern_id", created.ID.Hex()),
		zap.String("pattern_type", created.PatternType))
	jsonutil.Created(w, created)
}

// AddAutomated handles PUT /website/{websiteId}/automatedPatterns. The
// batch must carry a single creator, and that creator must hold the
// superadmin role; every entry lands flagged as auto-generated.
func (h *Handler) AddAutomated(w http.ResponseWriter, r *http.Request) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}

	var in []patternInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if len(in) == 0 {
		jsonutil.BadRequest(w, "at least one pattern is required")
		return
	}

	creatorHex := in[0].CreatedByExpertID
	for _, p := range in {
		if p.CreatedByExpertID != creatorHex {
			jsonutil.BadRequest(w, "all patterns in a batch must share one creator")
			return
		}
		if msg := (&p).validate(); msg != "" {
			jsonutil.BadRequest(w, msg)
			return
		}
	}
	creatorID, err := primitive.ObjectIDFromHex(creatorHex)
	if err != nil {
		jsonutil.BadRequest(w, "invalid creator id")
		return
	}

	creator, err := h.users.GetByID(r.Context(), creatorID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "creator not found")
			return
		}
		h.logger.Error("failed to load creator", zap.Error(err))
		jsonutil.InternalError(w, "failed to add patterns")
		return
	}
	if creator.Role != models.RoleSuperAdmin {
		jsonutil.BadRequest(w, "automated patterns must be created by a superadmin")
		return
	}

	website, err := h.websites.GetByID(r.Context(), websiteID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "website not found")
			return
		}
		h.logger.Error("failed to load website", zap.Error(err))
		jsonutil.InternalError(w, "failed to add patterns")
		return
	}

	batch := make([]models.Pattern, 0, len(in))
	for _, p := range in {
		batch = append(batch, models.Pattern{
			WebsiteID:         websiteID,
			PatternType:       strings.TrimSpace(p.PatternType),
			Description:       strings.TrimSpace(p.Description),
			DetectedURL:       strings.TrimSpace(p.DetectedURL),
			CreatedByExpertID: creatorID,
			IsAutoGenerated:   true,
		})
	}

	created, err := h.patterns.CreateMany(r.Context(), batch, website.ExpertIDs)
	if err != nil {
		h.logger.Error("failed to create automated patterns", zap.Error(err))
		jsonutil.InternalError(w, "failed to add patterns")
		return
	}

	h.logger.Info("automated patterns ingested",
		zap.String("website_id", websiteID.Hex()),
		zap.Int("count", len(created)))
	jsonutil.Created(w, created)
}

// List handles GET /website/{websiteId}/pattern.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}

	list, err := h.patterns.ListByWebsite(r.Context(), websiteID)
	if err != nil {
		h.logger.Error("failed to list patterns", zap.Error(err))
		jsonutil.InternalError(w, "failed to list patterns")
		return
	}
	if list == nil {
		list = []models.Pattern{}
	}
	jsonutil.OK(w, list)
}

// PatternWithComments is a pattern with its discussion thread joined
// in at read time.
type PatternWithComments struct {
	models.Pattern
	Comments []models.Comment `json:"comments"`
}

// Get handles GET /website/{websiteId}/pattern/{patternId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}
	patternID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "patternId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid pattern id")
		return
	}

	p, err := h.patterns.GetByWebsiteAndID(r.Context(), websiteID, patternID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "pattern not found")
			return
		}
		h.logger.Error("failed to load pattern", zap.Error(err))
		jsonutil.InternalError(w, "failed to load pattern")
		return
	}

	comments, err := h.comments.ListByPattern(r.Context(), patternID)
	if err != nil {
		h.logger.Error("failed to load comments", zap.Error(err))
		jsonutil.InternalError(w, "failed to load pattern")
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	jsonutil.OK(w, PatternWithComments{Pattern: *p, Comments: comments})
}

// UpdatePhase handles PUT /website/updatePatternPhase: one expert's
// verdict on one pattern.
func (h *Handler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	var in struct {
		WebsiteID     string `json:"websiteId"`
		PatternID     string `json:"patternId"`
		ExpertID      string `json:"expertId"`
		PatternExists bool   `json:"patternExists"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	websiteID, err := primitive.ObjectIDFromHex(in.WebsiteID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return
	}
	patternID, err := primitive.ObjectIDFromHex(in.PatternID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid pattern id")
		return
	}
	expertID, err := primitive.ObjectIDFromHex(in.ExpertID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid expert id")
		return
	}

	updated, err := h.patterns.RecordVerdict(r.Context(), websiteID, patternID, expertID, in.PatternExists)
	if err != nil {
		switch err {
		case mongo.ErrNoDocuments:
			jsonutil.NotFound(w, "pattern not found")
		case patternstore.ErrAlreadyVerified:
			jsonutil.NotFound(w, "pattern is already verified")
		case patternstore.ErrNoVerificationSlot:
			jsonutil.BadRequest(w, err.Error())
		default:
			h.logger.Error("failed to record verdict", zap.Error(err))
			jsonutil.InternalError(w, "failed to update pattern phase")
		}
		return
	}

	h.logger.Info("verdict recorded",
		zap.String("pattern_id", patternID.Hex()),
		zap.String("expert_id", expertID.Hex()),
		zap.Bool("pattern_exists", in.PatternExists),
		zap.String("pattern_phase", updated.PatternPhase))
	jsonutil.OK(w, updated)
}

// UploadImages handles PUT /website/{patternId}/uploadImages. Each
// uploaded file is stored under a "<uuid>_<filename>" key and the keys
// are appended to the pattern.
func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	patternID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "patternId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid pattern id")
		return
	}

	if _, err := h.patterns.GetByID(r.Context(), patternID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "pattern not found")
			return
		}
		h.logger.Error("failed to load pattern", zap.Error(err))
		jsonutil.InternalError(w, "failed to upload images")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		jsonutil.BadRequest(w, "invalid multipart payload")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonutil.BadRequest(w, "no files provided")
		return
	}

	keys := make([]string, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			jsonutil.BadRequest(w, "failed to read uploaded file")
			return
		}

		key := uuid.NewString() + "_" + filepath.Base(fh.Filename)
		putErr := h.files.Put(r.Context(), key, src, &storage.PutOptions{
			ContentType: fh.Header.Get("Content-Type"),
		})
		src.Close()
		if putErr != nil {
			h.logger.Error("failed to store image",
				zap.String("key", key),
				zap.Error(putErr))
			jsonutil.InternalError(w, "failed to store images")
			return
		}
		keys = append(keys, key)
	}

	if err := h.patterns.AppendImageKeys(r.Context(), patternID, keys); err != nil {
		h.logger.Error("failed to record image keys", zap.Error(err))
		jsonutil.InternalError(w, "failed to store images")
		return
	}

	h.logger.Info("pattern images uploaded",
		zap.String("pattern_id", patternID.Hex()),
		zap.Int("count", len(keys)))
	jsonutil.OK(w, map[string]any{"imageKeys": keys})
}

// CertificationImage handles GET /website/{imageKey}/certificationImageFetch.
// Public: the certificate badge is embedded on certified client sites.
// Only the configured certificate asset is served from this route.
func (h *Handler) CertificationImage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "imageKey")
	if key != h.certAssetKey {
		jsonutil.NotFound(w, "image not found")
		return
	}
	h.streamObject(w, r, key)
}

// PatternImage handles GET /website/patternImage/{imageKey}: streams an
// uploaded pattern screenshot.
func (h *Handler) PatternImage(w http.ResponseWriter, r *http.Request) {
	h.streamObject(w, r, chi.URLParam(r, "imageKey"))
}

func (h *Handler) streamObject(w http.ResponseWriter, r *http.Request, key string) {
	obj, err := h.files.Get(r.Context(), key)
	if err != nil {
		jsonutil.NotFound(w, "image not found")
		return
	}
	defer obj.Close()

	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if _, err := io.Copy(w, obj); err != nil {
		h.logger.Warn("image stream interrupted",
			zap.String("key", key),
			zap.Error(err))
	}
}

func onRoster(roster []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, e := range roster {
		if e == id {
			return true
		}
	}
	return false
}
