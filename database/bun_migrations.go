package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// runMigrations brings the schema up to date. Postgres uses the
// embedded golang-migrate migrations; sqlite tracks applied versions
// in its own table.
func (b *BunDB) runMigrations(ctx context.Context) error {
	if b.dbType == "postgres" || b.dbType == "cockroachdb" {
		return runPostgresMigrations(b.db.DB)
	}

	// Create a simple migrations tracking table
	_, err := b.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bun_schema_migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Check which migrations have been applied
	type AppliedMigration struct {
		bun.BaseModel `bun:"table:bun_schema_migrations"`
		Version       string `bun:"version"`
	}
	var applied []AppliedMigration
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

	// Run migrations in order
	migrations := []struct {
		version string
		name    string
		up      func(context.Context, *bun.DB) error
	}{
		{"001", "create_render_jobs", init001CreateRenderJobsTable},
		{"002", "create_server_config", init002CreateServerConfigTable},
	}

	for _, m := range migrations {
		if appliedMap[m.version] {
			continue
		}

		Logger.Info("Running migration", "version", m.version, "name", m.name)
		if err := m.up(ctx, b.db); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}

		// Mark as applied
		_, err = b.db.NewInsert().
			Model(&AppliedMigration{Version: m.version}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark migration %s as applied: %w", m.version, err)
		}
	}

	return nil
}

// Migration 001: Create render_jobs table
func init001CreateRenderJobsTable(ctx context.Context, db *bun.DB) error {
	Logger.Info("Running migration 001: Create render_jobs table")

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS render_jobs (
			id TEXT PRIMARY KEY,
			format TEXT NOT NULL,
			status TEXT DEFAULT 'pending',
			spec_hash TEXT NOT NULL,
			spec TEXT NOT NULL,
			output BLOB,
			content_type TEXT DEFAULT '',
			size INTEGER DEFAULT 0,
			duration_ms INTEGER DEFAULT 0,
			error TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			started_at TIMESTAMP,
			completed_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create render_jobs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_render_jobs_status ON render_jobs(status)",
		"CREATE INDEX IF NOT EXISTS idx_render_jobs_format ON render_jobs(format)",
		"CREATE INDEX IF NOT EXISTS idx_render_jobs_spec_hash ON render_jobs(spec_hash)",
		"CREATE INDEX IF NOT EXISTS idx_render_jobs_created_at ON render_jobs(created_at DESC)",
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	Logger.Info("Migration 001 completed successfully")
	return nil
}

func init001RollbackRenderJobsTable(ctx context.Context, db *bun.DB) error {
	Logger.Info("Rolling back migration 001")

	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS render_jobs")
	return err
}

// Migration 002: Create server_config table
func init002CreateServerConfigTable(ctx context.Context, db *bun.DB) error {
	Logger.Info("Running migration 002: Create server_config table")

	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS server_config (
			id INTEGER PRIMARY KEY,
			listen_addr_ip TEXT DEFAULT '',
			listen_addr_port TEXT NOT NULL DEFAULT '8000',
			render_backend TEXT NOT NULL DEFAULT 'resvg',
			chrome_path TEXT DEFAULT '',
			default_scale REAL NOT NULL DEFAULT 1.0,
			default_ppi REAL NOT NULL DEFAULT 72.0,
			default_quality INTEGER NOT NULL DEFAULT 90,
			cdn_base TEXT DEFAULT '',
			retention_days INTEGER NOT NULL DEFAULT 30,
			purge_schedule TEXT NOT NULL DEFAULT '@hourly',
			use_reverse_proxy BOOLEAN NOT NULL DEFAULT FALSE,
			base_url TEXT DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create server_config table: %w", err)
	}

	Logger.Info("Migration 002 completed successfully")
	return nil
}

func init002RollbackServerConfigTable(ctx context.Context, db *bun.DB) error {
	Logger.Info("Rolling back migration 002")

	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS server_config")
	return err
}
