// Package users provides account signup, sign-in and user lookup
// endpoints.
//
// Endpoints:
//   - POST /user/signup - Create an account (public)
//   - POST /user/signin - Exchange credentials for a bearer token (public)
//   - GET  /user/{userId} - Fetch one user (any authenticated role)
//   - PUT  /user/{userId}/subscription - Change own subscription plan
//   - GET  /user?role= - List users by role (superadmin)
package users

import (
	"net/http"
	"strings"

	userstore "github.com/dalemusser/vort/internal/app/store/users"
	"github.com/dalemusser/vort/internal/app/system/auth"
	"github.com/dalemusser/vort/internal/app/system/authutil"
	"github.com/dalemusser/vort/internal/app/system/jsonutil"
	"github.com/dalemusser/vort/internal/app/system/normalize"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles user account requests.
type Handler struct {
	users  *userstore.Store
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(users *userstore.Store, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, logger: logger}
}

// Signup handles POST /user/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		Email        string `json:"email"`
		Password     string `json:"password"`
		Role         string `json:"role"`
		Subscription string `json:"subscription"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	in.FirstName = normalize.Name(in.FirstName)
	in.LastName = normalize.Name(in.LastName)
	if in.FirstName == "" || in.LastName == "" {
		jsonutil.BadRequest(w, "first name and last name are required")
		return
	}
	if !strings.Contains(in.Email, "@") {
		jsonutil.BadRequest(w, "a valid email is required")
		return
	}
	if !models.IsValidRole(normalize.Role(in.Role)) {
		jsonutil.BadRequest(w, "role must be client, expert or superadmin")
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		jsonutil.InternalError(w, "failed to create account")
		return
	}

	created, err := h.users.Create(r.Context(), models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Subscription: in.Subscription,
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			jsonutil.BadRequest(w, err.Error())
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		jsonutil.InternalError(w, "failed to create account")
		return
	}

	h.logger.Info("user signed up",
		zap.String("user_id", created.ID.Hex()),
		zap.String("role", created.Role))
	jsonutil.Created(w, created)
}

// Signin handles POST /user/signin. Credentials must match on both
// email and role: a valid client password does not open the expert
// dashboard.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Email == "" || in.Password == "" || in.Role == "" {
		jsonutil.BadRequest(w, "email, password and role are required")
		return
	}

	u, err := h.users.GetByEmailAndRole(r.Context(), in.Email, in.Role)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Unauthorized(w, "invalid credentials")
			return
		}
		h.logger.Error("signin lookup failed", zap.Error(err))
		jsonutil.InternalError(w, "sign in failed")
		return
	}
	if !authutil.CheckPassword(in.Password, u.PasswordHash) {
		jsonutil.Unauthorized(w, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		jsonutil.InternalError(w, "sign in failed")
		return
	}

	h.logger.Info("user signed in",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", u.Role))
	jsonutil.OK(w, map[string]any{
		"accessToken": token,
		"user":        u,
	})
}

// Get handles GET /user/{userId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("failed to load user", zap.Error(err))
		jsonutil.InternalError(w, "failed to load user")
		return
	}
	jsonutil.OK(w, u)
}

// UpdateSubscription handles PUT /user/{userId}/subscription. Users
// may change only their own plan.
func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		jsonutil.BadRequest(w, "invalid user id")
		return
	}

	claims, ok := auth.CurrentClaims(r)
	if !ok || claims.UserID() != id {
		jsonutil.Unauthorized(w, "you can only change your own subscription")
		return
	}

	var in struct {
		Subscription string `json:"subscription"`
	}
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	if in.Subscription == "" {
		jsonutil.BadRequest(w, "subscription is required")
		return
	}

	if err := h.users.UpdateSubscription(r.Context(), id, in.Subscription); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "user not found")
			return
		}
		h.logger.Error("failed to update subscription", zap.Error(err))
		jsonutil.InternalError(w, "failed to update subscription")
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load user", zap.Error(err))
		jsonutil.InternalError(w, "failed to update subscription")
		return
	}
	jsonutil.OK(w, u)
}

// ListByRole handles GET /user?role=.
func (h *Handler) ListByRole(w http.ResponseWriter, r *http.Request) {
	role := normalize.Role(normalize.QueryParam(r.URL.Query().Get("role")))
	if !models.IsValidRole(role) {
		jsonutil.BadRequest(w, "role must be client, expert or superadmin")
		return
	}

	list, err := h.users.ListByRole(r.Context(), role)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		jsonutil.InternalError(w, "failed to list users")
		return
	}
	if list == nil {
		list = []models.User{}
	}
	jsonutil.OK(w, list)
}
