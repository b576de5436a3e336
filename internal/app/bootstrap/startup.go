// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/leadcentral/internal/app/resources"
	userstore "github.com/dalemusser/leadcentral/internal/app/store/users"
	"github.com/dalemusser/leadcentral/internal/app/system/authutil"
	"github.com/dalemusser/leadcentral/internal/app/system/tasks"
	"github.com/dalemusser/leadcentral/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error aborts startup and prevents the server from
// starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	// Note: Indexes are created in EnsureSchema via indexes.EnsureAll().

	// Seed admin user if configured. This is the only way the first
	// account gets created; everyone else is added from the dashboard.
	if appCfg.SeedAdminEmail != "" {
		if err := ensureAdminUser(ctx, deps, appCfg, logger); err != nil {
			logger.Error("failed to seed admin user", zap.Error(err))
			return err
		}
	}

	startTaskRunner(deps.MongoDatabase, appCfg, logger)

	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	taskRunner.Register(tasks.SessionCleanupJob(db, logger))
	taskRunner.Register(tasks.InactiveSessionCleanupJob(db, logger, appCfg.SessionIdleTimeout, appCfg.SessionSweepInterval))
	taskRunner.Register(tasks.CaptureStatsRetentionJob(db, logger))

	taskRunner.Start()
}

// ensureAdminUser ensures an admin user exists with the configured email.
// If a user exists with this email, ensure they have the admin role.
// If no user exists, create a new admin account with the seed password.
func ensureAdminUser(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	store := userstore.New(deps.MongoDatabase)

	name := appCfg.SeedAdminName
	if name == "" {
		name = "Admin"
	}

	existing, err := store.GetByEmail(ctx, appCfg.SeedAdminEmail)
	if err == nil {
		if existing.Role == models.RoleAdmin {
			logger.Debug("admin user already configured",
				zap.String("email", existing.Email))
			return nil
		}

		role := models.RoleAdmin
		if err := store.UpdateFromInput(ctx, existing.ID, userstore.UpdateInput{Role: &role}); err != nil {
			return err
		}
		logger.Info("promoted existing user to admin",
			zap.String("email", existing.Email),
			zap.String("user_id", existing.ID.Hex()),
			zap.String("previous_role", existing.Role))
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hash, err := authutil.HashPassword(appCfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	created, err := store.CreateFromInput(ctx, userstore.CreateInput{
		Name:         name,
		Email:        appCfg.SeedAdminEmail,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}

	logger.Info("created admin user",
		zap.String("email", created.Email),
		zap.String("user_id", created.ID.Hex()))
	return nil
}
