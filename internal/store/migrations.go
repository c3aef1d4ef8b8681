package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order; each version runs at most once per
// database.
var migrations = []migration{
	{
		version: 1,
		name:    "runs_and_incidents",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS pipeline_runs (
				run_id TEXT PRIMARY KEY,
				input_path TEXT NOT NULL DEFAULT '',
				output_path TEXT NOT NULL DEFAULT '',
				rows_read INTEGER NOT NULL,
				rows_written INTEGER NOT NULL,
				clamp_cap REAL,
				values_clamped INTEGER NOT NULL DEFAULT 0,
				started_at TEXT NOT NULL,
				finished_at TEXT NOT NULL
			);`,
			`CREATE TABLE IF NOT EXISTS incidents (
				run_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				number TEXT NOT NULL,
				first_opened_at TEXT,
				last_resolved_at TEXT,
				last_closed_at TEXT,
				final_priority TEXT,
				final_state TEXT NOT NULL DEFAULT '',
				assignment_group_mode TEXT,
				events_count INTEGER,
				resolution_hours REAL,
				sla_breached INTEGER,
				quick_resolution INTEGER,
				priority_rank INTEGER,
				PRIMARY KEY (run_id, position),
				FOREIGN KEY (run_id) REFERENCES pipeline_runs(run_id) ON DELETE CASCADE
			);`,
			`CREATE INDEX IF NOT EXISTS idx_incidents_number ON incidents(number);`,
		},
	},
	{
		version: 2,
		name:    "stage_audit",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS pipeline_stages (
				run_id TEXT NOT NULL,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				rows_in INTEGER NOT NULL,
				rows_out INTEGER NOT NULL,
				skipped INTEGER NOT NULL DEFAULT 0,
				duration_ns INTEGER NOT NULL,
				PRIMARY KEY (run_id, position),
				FOREIGN KEY (run_id) REFERENCES pipeline_runs(run_id) ON DELETE CASCADE
			);`,
			`ALTER TABLE pipeline_runs ADD COLUMN parse_failures TEXT NOT NULL DEFAULT '{}';`,
		},
	},
}

func applyMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
		logger.Info("Applied migration",
			slog.Int("version", m.version),
			slog.String("name", m.name))
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration #%d: begin: %w", m.version, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range m.stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration #%d (%s) failed: %w", m.version, m.name, err)
		}
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("migration #%d: record version: %w", m.version, err)
	}
	return tx.Commit()
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
