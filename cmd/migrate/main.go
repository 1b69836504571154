package main

// Run database migrations:
//   go run ./cmd/migrate            apply all pending migrations
//   go run ./cmd/migrate down       revert the latest migration
//   go run ./cmd/migrate version    print the current schema version

import (
	"context"
	"fmt"
	"os"

	"tokencount-backend/internal/shared/config"
	"tokencount-backend/internal/shared/storage/db"
	"tokencount-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "version":
		var version int64
		version, err = db.MigrationVersion(ctx, sqlDB)
		if err == nil {
			fmt.Println(version)
		}
	default:
		err = fmt.Errorf("unknown command %q (want up, down or version)", cmd)
	}
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": cmd, "error": err.Error()})
		sqlDB.Close()
		os.Exit(1)
	}
	telemetry.Info("migrate.complete", map[string]any{"command": cmd})
}
