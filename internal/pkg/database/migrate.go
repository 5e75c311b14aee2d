package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Migrate applies every *.sql file in migFS that is not yet recorded in
// schema_migrations, in filename order, each inside its own transaction.
// It returns the versions applied by this call.
func Migrate(ctx context.Context, db *DB, migFS fs.FS) ([]string, error) {
	if _, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW())`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := listMigrationFiles(migFS)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, file).Scan(&exists); err != nil {
			return applied, fmt.Errorf("check migration %s: %w", file, err)
		}
		if exists {
			continue
		}
		if err := applyMigration(ctx, db, migFS, file); err != nil {
			return applied, err
		}
		slog.Info("Migration applied", "version", file)
		applied = append(applied, file)
	}
	return applied, nil
}

func applyMigration(ctx context.Context, db *DB, migFS fs.FS, file string) error {
	sqlBytes, err := fs.ReadFile(migFS, file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}

	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, file); err != nil {
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		return nil
	})
}

func listMigrationFiles(migFS fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migFS, ".")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}
