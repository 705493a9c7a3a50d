package patterns

import (
	"github.com/dalemusser/vort/internal/app/system/auth"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Register adds the pattern endpoints to r. They share the /website
// mount with the website endpoints.
//
//   - PUT /website/{websiteId}/pattern - Report a pattern (expert)
//   - PUT /website/{websiteId}/automatedPatterns - Ingest a scanner batch (superadmin)
//   - GET /website/{websiteId}/pattern - List a website's patterns (client, expert)
//   - GET /website/{websiteId}/pattern/{patternId} - Pattern with its thread (expert)
//   - PUT /website/updatePatternPhase - Record a verification verdict (expert)
//   - PUT /website/{patternId}/uploadImages - Attach screenshots (expert)
//   - GET /website/{imageKey}/certificationImageFetch - Certificate badge (public)
//   - GET /website/patternImage/{imageKey} - Uploaded screenshot (any authenticated role)
func Register(r chi.Router, h *Handler, tm *auth.TokenManager) {
	r.With(tm.RequireRole(models.RoleExpert)).Put("/updatePatternPhase", h.UpdatePhase)
	r.With(tm.RequireRole()).Get("/patternImage/{imageKey}", h.PatternImage)

	r.With(tm.RequireRole(models.RoleExpert)).Put("/{websiteId}/pattern", h.Add)
	r.With(tm.RequireRole(models.RoleSuperAdmin)).Put("/{websiteId}/automatedPatterns", h.AddAutomated)
	r.With(tm.RequireRole(models.RoleClient, models.RoleExpert)).Get("/{websiteId}/pattern", h.List)
	r.With(tm.RequireRole(models.RoleExpert)).Get("/{websiteId}/pattern/{patternId}", h.Get)
	r.With(tm.RequireRole(models.RoleExpert)).Put("/{patternId}/uploadImages", h.UploadImages)
	r.Get("/{imageKey}/certificationImageFetch", h.CertificationImage)
}
