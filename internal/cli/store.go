package cli

import (
	"context"
	"fmt"
	"log/slog"

	"linkshort/internal/config"
	"linkshort/internal/controllers"
	"linkshort/internal/database"
	"linkshort/internal/repository"
)

// store bundles the repositories of the configured backend
type store struct {
	links  repository.LinkRepository
	clicks repository.ClickRepository
	pinger controllers.Pinger
	close  func() error
}

// openStore connects to the configured database and, when migrate is set,
// brings its schema up to date
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger, migrate bool) (*store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.URL, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		if migrate {
			if err := database.AutoMigrate(db); err != nil {
				sqlDB.Close()
				return nil, err
			}
			logger.Info("database migrations completed", "driver", cfg.Driver)
		}
		return &store{
			links:  repository.NewGormLinkRepository(db),
			clicks: repository.NewGormClickRepository(db),
			pinger: sqlDB,
			close:  sqlDB.Close,
		}, nil

	default:
		db, err := database.NewConnection(ctx, cfg.URL, logger)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := database.RunMigrations(ctx, db, logger); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &store{
			links:  repository.NewLinkRepository(db),
			clicks: repository.NewClickRepository(db),
			pinger: db,
			close:  db.Close,
		}, nil
	}
}
