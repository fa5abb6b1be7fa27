package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

var (
	gooseOnce sync.Once
	gooseErr  error
)

func setupGoose() error {
	gooseOnce.Do(func() {
		goose.SetBaseFS(migrationFiles)
		gooseErr = goose.SetDialect("postgres")
	})
	return gooseErr
}

// RunMigrations applies every pending embedded migration. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, "up")
}

// MigrateCommand is one goose operation against the embedded migrations.
type MigrateCommand struct {
	Name string
	// Target is the version for up-to and down-to.
	Target int64
}

// ParseMigrateCommand reads a command line such as "up", "down-to 2" or "status".
func ParseMigrateCommand(args []string) (MigrateCommand, error) {
	if len(args) == 0 {
		return MigrateCommand{Name: "up"}, nil
	}
	cmd := MigrateCommand{Name: args[0]}
	switch cmd.Name {
	case "up", "down", "redo", "reset", "status", "version":
		if len(args) > 1 {
			return MigrateCommand{}, fmt.Errorf("%s takes no arguments", cmd.Name)
		}
	case "up-to", "down-to":
		if len(args) != 2 {
			return MigrateCommand{}, fmt.Errorf("%s needs a target version", cmd.Name)
		}
		v, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || v < 0 {
			return MigrateCommand{}, fmt.Errorf("invalid target version %q", args[1])
		}
		cmd.Target = v
	default:
		return MigrateCommand{}, fmt.Errorf("unknown migrate command %q", cmd.Name)
	}
	return cmd, nil
}

// Migrate parses and runs a goose command. A nil database is a no-op.
func Migrate(ctx context.Context, database *sql.DB, args ...string) error {
	if database == nil {
		return nil
	}
	cmd, err := ParseMigrateCommand(args)
	if err != nil {
		return err
	}
	return cmd.Run(ctx, database)
}

func (c MigrateCommand) Run(ctx context.Context, database *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	switch c.Name {
	case "up":
		return goose.UpContext(ctx, database, migrationsDir)
	case "up-to":
		return goose.UpToContext(ctx, database, migrationsDir, c.Target)
	case "down":
		return goose.DownContext(ctx, database, migrationsDir)
	case "down-to":
		return goose.DownToContext(ctx, database, migrationsDir, c.Target)
	case "redo":
		return goose.RedoContext(ctx, database, migrationsDir)
	case "reset":
		return goose.ResetContext(ctx, database, migrationsDir)
	case "status":
		return goose.StatusContext(ctx, database, migrationsDir)
	case "version":
		return goose.VersionContext(ctx, database, migrationsDir)
	default:
		return fmt.Errorf("unknown migrate command %q", c.Name)
	}
}
