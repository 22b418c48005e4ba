package migrate

import (
	"context"
	"fmt"

	"github.com/futamarket/market-backend/pkg/config"
	"github.com/futamarket/market-backend/pkg/db"
	"github.com/futamarket/market-backend/pkg/logger"
)

// MaybeRunDev prepares the SQL schema at boot. SQLite databases always get
// their schema applied; Postgres runs goose only in dev with auto-migrate on.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	driver := cfg.DB.NormalizedDriver()
	if driver == config.DBDriverMongo {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	if driver == config.DBDriverSQLite {
		if err := ApplySQLiteSchema(ctx, sqlDB); err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "driver", driver), "sqlite schema ready")
		return nil
	}

	if !cfg.App.IsDev() || !cfg.DB.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
