// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	userstore "github.com/dalemusser/vort/internal/app/store/users"
	"github.com/dalemusser/vort/internal/app/system/authutil"
	"github.com/dalemusser/vort/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are
// complete, but before the HTTP handler is built and requests are
// served.
//
// Returning a non-nil error aborts startup and prevents the server
// from starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SeedSuperAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, deps, appCfg, logger); err != nil {
			logger.Error("failed to seed superadmin", zap.Error(err))
			return err
		}
	}
	return nil
}

// ensureSuperAdmin ensures a superadmin account exists. If one already
// exists it is left alone; role management keeps exactly one.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	exists, err := users.ExistsWithRole(ctx, models.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if exists {
		logger.Debug("superadmin already configured")
		return nil
	}

	// An account may hold the seeded email under another role; do not
	// silently repurpose it.
	if _, err := users.GetByEmail(ctx, appCfg.SeedSuperAdminEmail); err == nil {
		logger.Warn("seed superadmin email already taken by a non-superadmin account",
			zap.String("email", appCfg.SeedSuperAdminEmail))
		return nil
	} else if err != mongo.ErrNoDocuments {
		return err
	}

	hash, err := authutil.HashPassword(appCfg.SeedSuperAdminPassword)
	if err != nil {
		return err
	}

	name := appCfg.SeedSuperAdminName
	if name == "" {
		name = "Admin"
	}
	created, err := users.Create(ctx, models.User{
		FirstName:    name,
		LastName:     "",
		Email:        appCfg.SeedSuperAdminEmail,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
	})
	if err != nil {
		return err
	}

	logger.Info("seeded superadmin user",
		zap.String("email", created.Email),
		zap.String("user_id", created.ID.Hex()))
	return nil
}
