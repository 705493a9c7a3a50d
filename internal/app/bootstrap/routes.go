// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	commentsfeature "github.com/dalemusser/vort/internal/app/features/comments"
	healthfeature "github.com/dalemusser/vort/internal/app/features/health"
	patternsfeature "github.com/dalemusser/vort/internal/app/features/patterns"
	usersfeature "github.com/dalemusser/vort/internal/app/features/users"
	websitesfeature "github.com/dalemusser/vort/internal/app/features/websites"
	commentstore "github.com/dalemusser/vort/internal/app/store/comments"
	patternstore "github.com/dalemusser/vort/internal/app/store/patterns"
	userstore "github.com/dalemusser/vort/internal/app/store/users"
	websitestore "github.com/dalemusser/vort/internal/app/store/websites"
	"github.com/dalemusser/vort/internal/app/system/apicors"
	"github.com/dalemusser/vort/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Refuse weak token secrets in production mode.
	secure := coreCfg.Env == "prod"
	tokens, err := auth.NewTokenManager(appCfg.JWTSecret, appCfg.JWTExpiry, secure, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	users := userstore.New(deps.MongoDatabase)
	websites := websitestore.New(deps.MongoDatabase)
	patterns := patternstore.New(deps.MongoDatabase)
	comments := commentstore.New(deps.MongoDatabase)

	usersHandler := usersfeature.NewHandler(users, tokens, logger)
	websitesHandler := websitesfeature.NewHandler(websites, users, patterns, deps.Mailer,
		deps.Mailer.FromName(), appCfg.BaseURL, logger)
	patternsHandler := patternsfeature.NewHandler(patterns, websites, users, comments,
		deps.FileStorage, appCfg.CertificateAssetKey, logger)
	commentsHandler := commentsfeature.NewHandler(comments, patterns, websites, users, logger)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)

	r := chi.NewRouter()

	/*──────────────────────── global middleware ────────────────────────*/

	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	/*──────────────────────────── routes ───────────────────────────────*/

	healthfeature.Register(r, healthHandler)

	// The API is consumed by browser dashboards on other origins;
	// apicors answers preflights and allows the Authorization header.
	r.Route("/user", func(api chi.Router) {
		api.Use(apicors.Middleware())
		api.Mount("/", usersfeature.Routes(usersHandler, tokens))
	})

	// The website, pattern and comment endpoints share the /website
	// mount the same way the original API laid them out.
	r.Route("/website", func(api chi.Router) {
		api.Use(apicors.Middleware())
		websitesfeature.Register(api, websitesHandler, tokens)
		patternsfeature.Register(api, patternsHandler, tokens)
		commentsfeature.Register(api, commentsHandler, tokens)
	})

	logger.Info("HTTP handler built",
		zap.String("env", coreCfg.Env),
		zap.String("base_url", appCfg.BaseURL),
	)
	return r, nil
}
