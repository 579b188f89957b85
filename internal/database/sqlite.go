package database

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"linkshort/internal/entities"
)

// OpenSQLite opens an embedded SQLite database through GORM. path may be
// ":memory:" for a throwaway store.
func OpenSQLite(path string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// SQLite serializes writers, and every in-memory connection is its own database
	sqlDB.SetMaxOpenConns(1)

	logger.Info("connected to database", "driver", "sqlite", "path", path)
	return db, nil
}

// AutoMigrate creates or updates the SQLite schema
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.ShortLink{}, &entities.ClickEvent{}); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return nil
}
