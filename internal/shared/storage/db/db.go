package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"novel-assistant/internal/shared/telemetry"
)

// DefaultApplicationName is reported to Postgres as application_name.
const DefaultApplicationName = "novel-assistant"

// ErrMissingURL is returned by Connect when no connection string is configured.
var ErrMissingURL = errors.New("DATABASE_URL is empty")

// Options controls the connection pool and startup ping.
type Options struct {
	ApplicationName string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = func(cfg *pgx.ConnConfig) *sql.DB {
	return stdlib.OpenDB(*cfg)
}

// DefaultServerOptions sizes the pool for the API server. Each upload holds
// a connection for two short inserts.
func DefaultServerOptions() Options {
	return Options{
		ApplicationName: DefaultApplicationName,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// DefaultMigrateOptions uses a single connection; goose runs serially.
func DefaultMigrateOptions() Options {
	opts := DefaultServerOptions()
	opts.ApplicationName = DefaultApplicationName + "-migrate"
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	return opts
}

type envOverride struct {
	key   string
	apply func(*Options, string) error
}

var envOverrides = []envOverride{
	{"DB_MAX_OPEN_CONNS", func(o *Options, v string) (err error) { o.MaxOpenConns, err = strconv.Atoi(v); return }},
	{"DB_MAX_IDLE_CONNS", func(o *Options, v string) (err error) { o.MaxIdleConns, err = strconv.Atoi(v); return }},
	{"DB_CONN_MAX_LIFETIME", func(o *Options, v string) (err error) { o.ConnMaxLifetime, err = time.ParseDuration(v); return }},
	{"DB_CONN_MAX_IDLE_TIME", func(o *Options, v string) (err error) { o.ConnMaxIdleTime, err = time.ParseDuration(v); return }},
	{"DB_PING_TIMEOUT", func(o *Options, v string) (err error) { o.PingTimeout, err = time.ParseDuration(v); return }},
	{"DB_APPLICATION_NAME", func(o *Options, v string) error { o.ApplicationName = v; return nil }},
}

// OptionsFromEnv overrides defaults with DB_* env vars. Unparseable values
// are logged and skipped.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	for _, o := range envOverrides {
		raw := strings.TrimSpace(os.Getenv(o.key))
		if raw == "" {
			continue
		}
		next := opts
		if err := o.apply(&next, raw); err != nil {
			telemetry.Warn("db.env_invalid", map[string]any{"key": o.key, "error": err.Error()})
			continue
		}
		opts = next
	}
	return opts
}

// Connect parses databaseURL with pgx, opens a database/sql pool over the pgx
// driver and pings it. The pool is shared by every repo.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrMissingURL
	}
	cfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if _, set := cfg.RuntimeParams["application_name"]; !set && opts.ApplicationName != "" {
		cfg.RuntimeParams["application_name"] = opts.ApplicationName
	}

	db := openDB(cfg)
	applyOptions(db, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s/%s: %w", cfg.Host, cfg.Database, err)
	}

	fields := poolStats(db)
	fields["host"] = cfg.Host
	fields["database"] = cfg.Database
	telemetry.Info("db.connected", fields)
	return db, nil
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 || opts.MaxIdleConns > opts.MaxOpenConns {
		opts.MaxIdleConns = opts.MaxOpenConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func poolStats(db *sql.DB) map[string]any {
	stats := db.Stats()
	return map[string]any{
		"open":     stats.OpenConnections,
		"in_use":   stats.InUse,
		"idle":     stats.Idle,
		"max_open": stats.MaxOpenConnections,
	}
}
