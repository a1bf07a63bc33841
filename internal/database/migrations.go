package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// MigrationsDir is the directory inside the embedded filesystem holding the
// goose migrations
const MigrationsDir = "migrations"

//go:embed migrations/*.sql
var embedMigrations embed.FS

func useEmbeddedMigrations() error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// RunMigrations applies every pending migration and logs the resulting version
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	if err := useEmbeddedMigrations(); err != nil {
		return err
	}

	if err := goose.Up(db, MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("Schema up to date", zap.Int64("version", version))
	return nil
}

// GetMigrationStatus prints the state of each migration through goose's logger
func GetMigrationStatus(db *sql.DB) error {
	if err := useEmbeddedMigrations(); err != nil {
		return err
	}
	return goose.Status(db, MigrationsDir)
}
