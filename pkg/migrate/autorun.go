package migrate

import (
	"context"
	"fmt"

	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/db"
	"github.com/localbasket/localbasket-backend/pkg/db/models"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in
// dev mode and the feature flag is enabled. On the SQLite dev path goose is
// skipped and the schema is synced from the gorm models directly; the
// geography column and GIST index from the Postgres migrations have no
// SQLite equivalent, so proximity queries fall back to a bounding-box scan
// there.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if client.Driver() == db.DriverSQLite {
		logg.Info(ctx, "syncing SQLite schema from models (dev auto-run)")
		if err := client.DB().WithContext(ctx).AutoMigrate(allModels()...); err != nil {
			return fmt.Errorf("sqlite auto-migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

func allModels() []any {
	return []any{
		&models.User{},
		&models.Product{},
		&models.Address{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.Complaint{},
		&models.ProductInteraction{},
	}
}
