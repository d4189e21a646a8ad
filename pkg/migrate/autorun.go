package migrate

import (
	"context"
	"fmt"

	"github.com/nutricart/nutricart-backend/pkg/config"
	"github.com/nutricart/nutricart-backend/pkg/db"
	"github.com/nutricart/nutricart-backend/pkg/db/models"
	"github.com/nutricart/nutricart-backend/pkg/logger"
)

// MaybeRunDev migrates automatically in dev when the feature flag is set.
// SQLite databases are created from the models since the SQL files target Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dialect": client.Dialect()})

	if client.Dialect() == db.DialectSQLite {
		logg.Info(ctx, "running gorm auto-migrate (dev sqlite)")
		if err := AutoMigrateModels(ctx, client); err != nil {
			return err
		}
		logg.Info(ctx, "auto-migrate completed")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "dir", DefaultDir)
	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, client.Dialect(), DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}

// AutoMigrateModels creates the schema for every persisted model.
func AutoMigrateModels(ctx context.Context, client *db.Client) error {
	if err := client.DB().WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.SavedCart{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
