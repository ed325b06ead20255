package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies embedded SQL migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, "up")
}

// Migrate runs a goose command (up, down, status, version, redo) against the embedded migrations.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, database, "migrations"); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
