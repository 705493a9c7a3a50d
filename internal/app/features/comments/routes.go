package comments

import (
	"github.com/dalemusser/vort/internal/app/system/auth"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Register adds the comment endpoints to r. They share the /website
// mount with the website and pattern endpoints.
//
//   - POST /website/{websiteId}/pattern/{patternId}/comment - Start a thread (expert)
//   - POST /website/{websiteId}/pattern/{patternId}/comment/{commentId}/reply - Reply (expert)
func Register(r chi.Router, h *Handler, tm *auth.TokenManager) {
	r.With(tm.RequireRole(models.RoleExpert)).Post("/{websiteId}/pattern/{patternId}/comment", h.Add)
	r.With(tm.RequireRole(models.RoleExpert)).Post("/{websiteId}/pattern/{patternId}/comment/{commentId}/reply", h.AddReply)
}
