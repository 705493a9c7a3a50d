package users

import (
	"net/http"

	"github.com/dalemusser/vort/internal/app/system/auth"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns a router with the user endpoints.
//
// When mounted at /user:
//   - POST /user/signup - Create an account (public)
//   - POST /user/signin - Sign in (public)
//   - GET  /user/{userId} - Fetch one user (any authenticated role)
//   - PUT  /user/{userId}/subscription - Change own subscription plan
//   - GET  /user?role= - List users by role (superadmin only)
func Routes(h *Handler, tm *auth.TokenManager) http.Handler {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/signin", h.Signin)

	r.With(tm.RequireRole()).Get("/{userId}", h.Get)
	r.With(tm.RequireRole()).Put("/{userId}/subscription", h.UpdateSubscription)
	r.With(tm.RequireRole(models.RoleSuperAdmin)).Get("/", h.ListByRole)

	return r
}
