package websites

import (
	"net/http"

	"github.com/dalemusser/vort/internal/app/system/auth"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Register adds the website endpoints to r.
//
// When mounted at /website:
//   - POST /website - Submit a website for review (expert)
//   - PUT  /website/{websiteId}/assignExperts - Replace the expert roster (superadmin)
//   - GET  /website/{websiteId} - Fetch one website (any authenticated role)
//   - GET  /website?userId= - List a user's websites (client, expert)
//   - GET  /website/{userType}/details - Users of a role with their websites (superadmin)
//   - PUT  /website/{websiteId}/upVote, /downVote - Toggle a vote (client)
//   - PUT  /website/{websiteId}/publish - Publish the review verdict (expert)
//   - GET  /website/{websiteId}/generateCertification - Issue the certification id (client)
//   - GET  /website/clientKpi/{clientId} - Client dashboard counts (client)
//   - GET  /website/expertKpi/{expertId} - Expert dashboard counts (expert)
//
// The static routes are registered before the {websiteId} wildcards so
// chi resolves them first.
func Register(r chi.Router, h *Handler, tm *auth.TokenManager) {
	r.With(tm.RequireRole(models.RoleExpert)).Post("/", h.Create)
	r.With(tm.RequireRole(models.RoleClient, models.RoleExpert)).Get("/", h.List)

	r.With(tm.RequireRole(models.RoleClient)).Get("/clientKpi/{clientId}", h.ClientKpi)
	r.With(tm.RequireRole(models.RoleExpert)).Get("/expertKpi/{expertId}", h.ExpertKpi)
	r.With(tm.RequireRole(models.RoleSuperAdmin)).Get("/{userType:client|expert|superadmin}/details", h.UserTypeDetails)

	r.With(tm.RequireRole(models.RoleSuperAdmin)).Put("/{websiteId}/assignExperts", h.AssignExperts)
	r.With(tm.RequireRole(models.RoleClient)).Put("/{websiteId}/upVote", h.UpVote)
	r.With(tm.RequireRole(models.RoleClient)).Put("/{websiteId}/downVote", h.DownVote)
	r.With(tm.RequireRole(models.RoleExpert)).Put("/{websiteId}/publish", h.Publish)
	r.With(tm.RequireRole(models.RoleClient)).Get("/{websiteId}/generateCertification", h.GenerateCertification)
	r.With(tm.RequireRole()).Get("/{websiteId}", h.Get)
}

// Routes returns a standalone router with the website endpoints.
func Routes(h *Handler, tm *auth.TokenManager) http.Handler {
	r := chi.NewRouter()
	Register(r, h, tm)
	return r
}
