// Package comments provides the expert discussion endpoints on
// pattern findings.
package comments

import (
	"net/http"
	"strings"

	commentstore "github.com/dalemusser/vort/internal/app/store/comments"
	patternstore "github.com/dalemusser/vort/internal/app/store/patterns"
	userstore "github.com/dalemusser/vort/internal/app/store/users"
	websitestore "github.com/dalemusser/vort/internal/app/store/websites"
	"github.com/dalemusser/vort/internal/app/system/jsonutil"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles comment requests.
type Handler struct {
	comments *commentstore.Store
	patterns *patternstore.Store
	websites *websitestore.Store
	users    *userstore.Store
	logger   *zap.Logger
}

// NewHandler creates a comments handler.
func NewHandler(comments *commentstore.Store, patterns *patternstore.Store, websites *websitestore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		comments: comments,
		patterns: patterns,
		websites: websites,
		users:    users,
		logger:   logger,
	}
}

type commentInput struct {
	ExpertID string `json:"expertId"`
	Content  string `json:"content"`
}

// resolveThread validates the websiteId/patternId pair and the acting
// expert shared by both endpoints. It writes the error response itself
// and reports whether the caller should continue.
func (h *Handler) resolveThread(w http.ResponseWriter, r *http.Request, in commentInput) (websiteID, patternID, expertID primitive.ObjectID, ok bool) {
	websiteID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "websiteId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid website id")
		return websiteID, patternID, expertID, false
	}
	patternID, err = primitive.ObjectIDFromHex(chi.URLParam(r, "patternId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid pattern id")
		return websiteID, patternID, expertID, false
	}
	expertID, err = primitive.ObjectIDFromHex(in.ExpertID)
	if err != nil {
		jsonutil.BadRequest(w, "invalid expert id")
		return websiteID, patternID, expertID, false
	}
	if strings.TrimSpace(in.Content) == "" {
		jsonutil.BadRequest(w, "content is required")
		return websiteID, patternID, expertID, false
	}

	if _, err := h.websites.GetByID(r.Context(), websiteID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "website not found")
		} else {
			h.logger.Error("failed to load website", zap.Error(err))
			jsonutil.InternalError(w, "failed to save comment")
		}
		return websiteID, patternID, expertID, false
	}
	if _, err := h.patterns.GetByWebsiteAndID(r.Context(), websiteID, patternID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "pattern not found")
		} else {
			h.logger.Error("failed to load pattern", zap.Error(err))
			jsonutil.InternalError(w, "failed to save comment")
		}
		return websiteID, patternID, expertID, false
	}
	if _, err := h.users.GetByID(r.Context(), expertID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "expert not found")
		} else {
			h.logger.Error("failed to load expert", zap.Error(err))
			jsonutil.InternalError(w, "failed to save comment")
		}
		return websiteID, patternID, expertID, false
	}
	return websiteID, patternID, expertID, true
}

// Add handles POST /website/{websiteId}/pattern/{patternId}/comment.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var in commentInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	websiteID, patternID, expertID, ok := h.resolveThread(w, r, in)
	if !ok {
		return
	}

	created, err := h.comments.Create(r.Context(), models.Comment{
		WebsiteID: websiteID,
		PatternID: patternID,
		ExpertID:  expertID,
		Content:   strings.TrimSpace(in.Content),
	})
	if err != nil {
		h.logger.Error("failed to create comment", zap.Error(err))
		jsonutil.InternalError(w, "failed to save comment")
		return
	}

	h.logger.Info("comment added",
		zap.String("pattern_id", patternID.Hex()),
		zap.String("comment_id", created.ID.Hex()))
	jsonutil.Created(w, created)
}

// AddReply handles
// POST /website/{websiteId}/pattern/{patternId}/comment/{commentId}/reply.
func (h *Handler) AddReply(w http.ResponseWriter, r *http.Request) {
	var in commentInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	_, patternID, expertID, ok := h.resolveThread(w, r, in)
	if !ok {
		return
	}

	commentID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid comment id")
		return
	}
	parent, err := h.comments.GetByID(r.Context(), commentID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "comment not found")
			return
		}
		h.logger.Error("failed to load comment", zap.Error(err))
		jsonutil.InternalError(w, "failed to save reply")
		return
	}
	if parent.PatternID != patternID {
		jsonutil.NotFound(w, "comment not found")
		return
	}

	updated, err := h.comments.AppendReply(r.Context(), commentID, models.Reply{
		ExpertID: expertID,
		Content:  strings.TrimSpace(in.Content),
	})
	if err != nil {
		h.logger.Error("failed to append reply", zap.Error(err))
		jsonutil.InternalError(w, "failed to save reply")
		return
	}

	h.logger.Info("reply added",
		zap.String("comment_id", commentID.Hex()),
		zap.Int("replies", len(updated.Replies)))
	jsonutil.Created(w, updated)
}
