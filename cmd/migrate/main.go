package main

// Run database migrations:
//   go run ./cmd/migrate [up|up-to N|down|down-to N|redo|reset|status|version]

import (
	"context"
	"errors"
	"fmt"
	"os"

	"jobportal-backend/internal/shared/config"
	"jobportal-backend/internal/shared/storage/db"
	"jobportal-backend/internal/shared/telemetry"
)

func main() {
	if err := run(context.Background(), config.Load(), os.Args[1:]); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"args": os.Args[1:], "error": err})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args []string) error {
	cmd, err := db.ParseMigrateCommand(args)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer sqlDB.Close()

	if err := cmd.Run(ctx, sqlDB); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	telemetry.Info("migrate.done", map[string]any{"command": cmd.Name, "target": cmd.Target})
	return nil
}
