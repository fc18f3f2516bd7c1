package database

import (
	"context"
	"fmt"
	"log/slog"

	"chirp/internal/config"
	"chirp/internal/middleware"

	"gorm.io/gorm"
)

// ApplySchema migrates the persistent models when DB_AUTO_MIGRATE is set.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if !cfg.DBAutoMigrate {
		middleware.Logger.Info("Skipping schema migration", slog.String("env", cfg.Env))
		return nil
	}

	middleware.Logger.Info("Running GORM AutoMigrate", slog.String("env", cfg.Env))
	if err := Migrate(ctx, db); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	middleware.Logger.Info("Database migration completed")
	return nil
}

// Migrate creates or updates every table in PersistentModels.
func Migrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(PersistentModels()...)
}
