package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

type migration struct {
	version string
	name    string
	up      func(context.Context, *bun.DB) error
	down    func(context.Context, *bun.DB) error
}

var migrations = []migration{
	{"001", "create_export_jobs_table", init001CreateExportJobsTable, init001RollbackExportJobsTable},
}

// appliedMigration tracks which migrations have already run
type appliedMigration struct {
	bun.BaseModel `bun:"table:bun_schema_migrations"`
	Version       string `bun:"version,pk"`
}

// runMigrations runs all Bun migrations
func (b *BunDB) runMigrations(ctx context.Context) error {
	// TEXT primary key keeps the tracking table portable between sqlite and postgres
	_, err := b.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bun_schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []appliedMigration
	err = b.db.NewSelect().
		Model(&applied).
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to check applied migrations: %w", err)
	}

	appliedMap := make(map[string]bool)
	for _, m := range applied {
		appliedMap[m.Version] = true
	}

	for _, m := range migrations {
		if appliedMap[m.version] {
			continue
		}

		Logger.Info("Running migration", "version", m.version, "name", m.name)
		if err := m.up(ctx, b.db); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}

		_, err = b.db.NewInsert().
			Model(&appliedMigration{Version: m.version}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark migration %s as applied: %w", m.version, err)
		}
	}

	Logger.Info("All migrations completed successfully")
	return nil
}

// rollbackMigrations undoes every applied migration, newest first
func (b *BunDB) rollbackMigrations(ctx context.Context) error {
	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		if err := m.down(ctx, b.db); err != nil {
			return fmt.Errorf("failed to roll back migration %s: %w", m.version, err)
		}
		_, err := b.db.NewDelete().
			Model((*appliedMigration)(nil)).
			Where("version = ?", m.version).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to unmark migration %s: %w", m.version, err)
		}
	}
	return nil
}

// Migration 001: Create export jobs table
func init001CreateExportJobsTable(ctx context.Context, db *bun.DB) error {
	Logger.Info("Running migration 001: Create export jobs table")

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS export_jobs (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			status TEXT DEFAULT 'pending',
			display_name TEXT DEFAULT '',
			output_name TEXT,
			page_count INTEGER DEFAULT 0,
			rotated_pages INTEGER DEFAULT 0,
			bytes BIGINT DEFAULT 0,
			message TEXT DEFAULT '',
			error TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			started_at TIMESTAMP,
			completed_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create export_jobs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_export_jobs_status ON export_jobs(status)",
		"CREATE INDEX IF NOT EXISTS idx_export_jobs_session ON export_jobs(session_id)",
		"CREATE INDEX IF NOT EXISTS idx_export_jobs_created_at ON export_jobs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_export_jobs_completed_at ON export_jobs(completed_at) WHERE completed_at IS NOT NULL",
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			// Partial indexes might not be supported in all SQLite versions
			Logger.Warn("Could not create index (might not be supported)", "error", err)
		}
	}

	Logger.Info("Migration 001 completed successfully")
	return nil
}

func init001RollbackExportJobsTable(ctx context.Context, db *bun.DB) error {
	Logger.Info("Rolling back migration 001")

	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS export_jobs")
	return err
}
