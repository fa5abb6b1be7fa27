package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"jobportal-backend/internal/shared/telemetry"
)

const defaultApplicationName = "jobportal-backend"

// Options controls the pool and per-session settings.
type Options struct {
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	ConnMaxIdleTime  time.Duration
	PingTimeout      time.Duration
	StatementTimeout time.Duration
	ApplicationName  string
}

// open builds the pool; tests replace it.
var open = openPGX

var singleton struct {
	mu sync.Mutex
	db *sql.DB
}

// IsLambdaRuntime reports whether the current process is running in AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// DefaultServerOptions suits the long-running API and worker processes.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnMaxIdleTime:  2 * time.Minute,
		PingTimeout:      5 * time.Second,
		StatementTimeout: 15 * time.Second,
	}
}

// DefaultLambdaOptions keeps the pool tiny; an instance serves one request at a time.
func DefaultLambdaOptions() Options {
	opts := DefaultServerOptions()
	opts.MaxOpenConns = 2
	opts.MaxIdleConns = 1
	opts.ConnMaxLifetime = 15 * time.Minute
	opts.ConnMaxIdleTime = 30 * time.Second
	opts.PingTimeout = 3 * time.Second
	return opts
}

// DefaultMigrateOptions is a single connection without a statement timeout,
// so long-running DDL is not cut off.
func DefaultMigrateOptions() Options {
	opts := DefaultServerOptions()
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	opts.StatementTimeout = 0
	opts.ApplicationName = defaultApplicationName + "-migrate"
	return opts
}

// OptionsFromEnv overrides defaults with DB_* variables when they parse.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	envInt("DB_MAX_OPEN_CONNS", &opts.MaxOpenConns)
	envInt("DB_MAX_IDLE_CONNS", &opts.MaxIdleConns)
	envDuration("DB_CONN_MAX_LIFETIME", &opts.ConnMaxLifetime)
	envDuration("DB_CONN_MAX_IDLE_TIME", &opts.ConnMaxIdleTime)
	envDuration("DB_PING_TIMEOUT", &opts.PingTimeout)
	envDuration("DB_STATEMENT_TIMEOUT", &opts.StatementTimeout)
	if name := strings.TrimSpace(os.Getenv("DB_APPLICATION_NAME")); name != "" {
		opts.ApplicationName = name
	}
	return opts
}

// Connect opens a pgx-backed *sql.DB and pings it. Repositories share the returned pool.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	database, err := open(databaseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(database, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := database.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return database, nil
}

// GetSingleton returns one pool per Lambda execution environment. Concurrent
// callers wait for the first connect; a failed connect is retried by the next caller.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	singleton.mu.Lock()
	defer singleton.mu.Unlock()

	if singleton.db != nil {
		return singleton.db, nil
	}
	database, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	singleton.db = database
	return database, nil
}

func openPGX(databaseURL string, opts Options) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	name := opts.ApplicationName
	if name == "" {
		name = defaultApplicationName
	}
	if _, set := cfg.RuntimeParams["application_name"]; !set {
		cfg.RuntimeParams["application_name"] = name
	}
	if opts.StatementTimeout > 0 {
		cfg.RuntimeParams["statement_timeout"] = strconv.FormatInt(opts.StatementTimeout.Milliseconds(), 10)
	}
	return stdlib.OpenDB(*cfg), nil
}

func configurePool(database *sql.DB, opts Options) {
	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := opts.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	database.SetMaxOpenConns(maxOpen)
	database.SetMaxIdleConns(maxIdle)
	database.SetConnMaxLifetime(lifetime)
	if opts.ConnMaxIdleTime > 0 {
		database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func envInt(key string, dst *int) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return
	}
	*dst = val
}

func envDuration(key string, dst *time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return
	}
	*dst = val
}
