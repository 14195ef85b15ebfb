package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"novel-assistant/internal/shared/telemetry"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// ErrNoDatabase is returned by migration commands that need a live connection.
var ErrNoDatabase = errors.New("no database connection")

// RunMigrations applies the embedded schema (documents, characters, analyses).
// A nil database means the in-memory repos are in use and nothing is applied.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	return withGoose(func() error {
		if err := goose.UpContext(ctx, database, migrationsDir); err != nil {
			return err
		}
		version, err := goose.GetDBVersionContext(ctx, database)
		if err != nil {
			return err
		}
		telemetry.Info("db.migrated", map[string]any{"version": version})
		return nil
	})
}

// MigrationStatus prints the applied state of every embedded migration.
func MigrationStatus(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return ErrNoDatabase
	}
	return withGoose(func() error {
		return goose.StatusContext(ctx, database, migrationsDir)
	})
}

// EmbeddedMigrations lists the migration files compiled into the binary, in
// apply order.
func EmbeddedMigrations() ([]string, error) {
	entries, err := fs.ReadDir(migrationFiles, migrationsDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func withGoose(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(telemetry.Logger())
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn()
}
