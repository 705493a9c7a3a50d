// Package auth provides bearer-token authentication and role-based
// authorization for the API.
//
// Tokens are HS256 JWTs carrying {sub, email, role} with a 60-minute
// expiry. Handlers declare their allowed roles explicitly in routes.go
// via TokenManager.RequireRole, so the required-capability set for every
// operation lives in one place instead of being scattered through
// handler bodies.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/vort/internal/app/system/jsonutil"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Token verification failure taxonomy. All of these surface to the
// caller as 401 with a human-readable message.
var (
	ErrNoToken          = errors.New("authorization token not provided")
	ErrTokenExpired     = errors.New("authorization token has expired")
	ErrTokenInvalid     = errors.New("invalid authorization token")
	ErrInsufficientRole = errors.New("insufficient permissions")
)

// Claims is the token payload attached to authenticated requests.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim as a Mongo ObjectID, or NilObjectID
// if the subject is malformed.
func (c *Claims) UserID() primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(c.Subject)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// TokenConfigError indicates invalid token manager configuration.
type TokenConfigError struct {
	Message string
}

func (e *TokenConfigError) Error() string {
	return e.Message
}

// TokenManager issues and verifies bearer tokens.
// Use NewTokenManager to create an instance.
type TokenManager struct {
	secret []byte
	expiry time.Duration
	logger *zap.Logger
}

// NewTokenManager creates a TokenManager.
//
// Parameters:
//   - secret: HS256 signing key (must be ≥32 chars in production)
//   - expiry: token lifetime (the platform uses 60 minutes)
//   - secure: if true (production), weak or default secrets fail startup
//   - logger: zap logger for auth failure logging
func NewTokenManager(secret string, expiry time.Duration, secure bool, logger *zap.Logger) (*TokenManager, error) {
	if secret == "" {
		return nil, &TokenConfigError{Message: "JWT secret is empty; provide ≥32 random chars"}
	}

	isWeak := len(secret) < 32 || isDefaultSecret(secret)
	if secure {
		if isWeak {
			return nil, &TokenConfigError{
				Message: "JWT secret is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("JWT secret is weak; 32+ random chars required in production",
			zap.Int("length", len(secret)),
			zap.Bool("is_default", isDefaultSecret(secret)))
	}

	if expiry <= 0 {
		expiry = time.Hour
	}

	return &TokenManager{
		secret: []byte(secret),
		expiry: expiry,
		logger: logger,
	}, nil
}

// Issue signs a token for the given user identity and returns it with
// the "Bearer " prefix, ready to be echoed back in an Authorization
// header.
func (tm *TokenManager) Issue(userID primitive.ObjectID, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", err
	}
	return "Bearer " + signed, nil
}

// Verify parses and validates a raw (un-prefixed) token string.
// Returns ErrTokenExpired or ErrTokenInvalid on failure.
func (tm *TokenManager) Verify(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request context                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// CurrentClaims returns the verified token claims for the request, if
// any. ok is false on unauthenticated requests.
func CurrentClaims(r *http.Request) (*Claims, bool) {
	claims, ok := r.Context().Value(claimsContextKey).(*Claims)
	return claims, ok
}

func withClaims(r *http.Request, c *Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), claimsContextKey, c))
}

// WithTestClaims attaches claims directly to a request, bypassing token
// verification. Test helper only.
func WithTestClaims(r *http.Request, c *Claims) *http.Request {
	return withClaims(r, c)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// RequireRole returns middleware that verifies the bearer token and
// checks the role claim against the allowed set. An empty allowed set
// admits any authenticated role.
//
// Usage in routes.go:
//
//	r.With(tm.RequireRole(models.RoleSuperAdmin)).Put("/{websiteId}/assignExperts", h.AssignExperts)
func (tm *TokenManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tm.authenticate(r)
			if err != nil {
				tm.logger.Debug("request rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				jsonutil.Unauthorized(w, err.Error())
				return
			}

			if len(allowed) > 0 && !roleAllowed(claims.Role, allowed) {
				tm.logger.Debug("request rejected: role not allowed",
					zap.String("path", r.URL.Path),
					zap.String("role", claims.Role))
				jsonutil.Unauthorized(w, ErrInsufficientRole.Error())
				return
			}

			next.ServeHTTP(w, withClaims(r, claims))
		})
	}
}

// RequireAuthenticated is shorthand for RequireRole with no role
// restriction: any valid token is admitted.
func (tm *TokenManager) RequireAuthenticated(next http.Handler) http.Handler {
	return tm.RequireRole()(next)
}

// authenticate extracts and verifies the bearer token from the request.
func (tm *TokenManager) authenticate(r *http.Request) (*Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, ErrNoToken
	}

	// Expect "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ErrTokenInvalid
	}

	return tm.Verify(parts[1])
}

func roleAllowed(role string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(a, role) {
			return true
		}
	}
	return false
}

// isDefaultSecret checks whether the secret is one of the known dev
// placeholder values that must never reach production.
func isDefaultSecret(secret string) bool {
	defaults := []string{
		"dev-only-change-me-please-0123456789ABCDEF",
		"changeme",
		"secret",
	}
	for _, d := range defaults {
		if secret == d {
			return true
		}
	}
	return false
}
