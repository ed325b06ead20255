package main

// Run database migrations:
//   go run ./cmd/migrate            (up)
//   go run ./cmd/migrate status
//   go run ./cmd/migrate down

import (
	"context"
	"os"

	"ai-resume-saas/internal/shared/config"
	"ai-resume-saas/internal/shared/storage/db"
	"ai-resume-saas/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg := config.Load()
	ctx := context.Background()

	opts := db.DefaultMigrateOptions().WithPool(cfg.DBPool)
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"err": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "err": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}
