package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"incidentcli/internal/errors"
	"incidentcli/pkg/contracts/domain"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const timeLayout = time.RFC3339Nano

// Store persists cleaned incidents and run audit records in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "store"))

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.NewIOError("failed to create database directory", err).
				WithContext("path", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open database", err).WithContext("path", path)
	}
	// SQLite serializes writers; a single connection also keeps :memory: stable.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewStorageError("failed to open database", err).WithContext("path", path)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, errors.NewStorageError("failed to enable foreign keys", err)
	}
	if err := applyMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, errors.NewStorageError("failed to migrate database", err).WithContext("path", path)
	}

	logger.Debug("Database ready", slog.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the highest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	v, err := schemaVersion(ctx, s.db)
	if err != nil {
		return 0, errors.NewStorageError("failed to read schema version", err)
	}
	return v, nil
}

// SaveRun records run, its stages and the cleaned incidents in a single
// transaction. A run id can be saved only once.
func (s *Store) SaveRun(ctx context.Context, run *domain.PipelineRun, incidents []domain.Incident) (err error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	failures, err := json.Marshal(run.ParseFailures)
	if err != nil {
		return errors.NewStorageError("failed to encode parse failures", err)
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO pipeline_runs
		(run_id, input_path, output_path, rows_read, rows_written, clamp_cap, values_clamped,
		 parse_failures, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.InputPath, run.OutputPath, run.RowsRead, run.RowsWritten,
		nullable(run.ClampCap), run.ValuesClamped, string(failures),
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
	); err != nil {
		return errors.NewStorageError("failed to insert run", err).WithContext("run_id", run.RunID)
	}

	for i, st := range run.Stages {
		if _, err = tx.ExecContext(ctx, `INSERT INTO pipeline_stages
			(run_id, position, name, rows_in, rows_out, skipped, duration_ns)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, i, st.Name, st.RowsIn, st.RowsOut, st.Skipped, int64(st.Duration),
		); err != nil {
			return errors.NewStorageError("failed to insert stage", err).
				WithContext("run_id", run.RunID).
				WithContext("stage", st.Name)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO incidents
		(run_id, position, number, first_opened_at, last_resolved_at, last_closed_at,
		 final_priority, final_state, assignment_group_mode, events_count, resolution_hours,
		 sla_breached, quick_resolution, priority_rank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.NewStorageError("failed to prepare incident insert", err)
	}
	defer stmt.Close()

	for i, inc := range incidents {
		if _, err = stmt.ExecContext(ctx,
			run.RunID, i, inc.Number,
			nullTime(inc.OpenedAt), nullTime(inc.ResolvedAt), nullTime(inc.ClosedAt),
			nullable(inc.Priority), inc.State, nullable(inc.AssignmentGroup),
			nullable(inc.EventsCount), nullable(inc.ResolutionHours),
			nullable(inc.SLABreached), nullable(inc.QuickResolution), nullable(inc.PriorityRank),
		); err != nil {
			return errors.NewStorageError("failed to insert incident", err).
				WithContext("run_id", run.RunID).
				WithContext("position", i)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.NewStorageError("failed to commit run", err).WithContext("run_id", run.RunID)
	}

	s.logger.InfoContext(ctx, "Run stored",
		slog.String("run_id", run.RunID),
		slog.Int("incidents", len(incidents)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// GetRun loads a stored run with its stages.
func (s *Store) GetRun(ctx context.Context, runID string) (*domain.PipelineRun, error) {
	var (
		run               domain.PipelineRun
		clampCap          sql.NullFloat64
		failures          string
		started, finished string
	)
	err := s.db.QueryRowContext(ctx, `SELECT run_id, input_path, output_path, rows_read,
		rows_written, clamp_cap, values_clamped, parse_failures, started_at, finished_at
		FROM pipeline_runs WHERE run_id = ?`, runID).Scan(
		&run.RunID, &run.InputPath, &run.OutputPath, &run.RowsRead, &run.RowsWritten,
		&clampCap, &run.ValuesClamped, &failures, &started, &finished)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("run %s", runID))
	}
	if err != nil {
		return nil, errors.NewStorageError("failed to load run", err).WithContext("run_id", runID)
	}

	if clampCap.Valid {
		run.ClampCap = domain.Ptr(clampCap.Float64)
	}
	if err := json.Unmarshal([]byte(failures), &run.ParseFailures); err != nil {
		return nil, errors.NewStorageError("failed to decode parse failures", err).WithContext("run_id", runID)
	}
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return nil, errors.NewStorageError("bad started_at", err).WithContext("run_id", runID)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return nil, errors.NewStorageError("bad finished_at", err).WithContext("run_id", runID)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, rows_in, rows_out, skipped, duration_ns
		FROM pipeline_stages WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, errors.NewStorageError("failed to load stages", err).WithContext("run_id", runID)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			st  domain.StageStat
			dur int64
		)
		if err := rows.Scan(&st.Name, &st.RowsIn, &st.RowsOut, &st.Skipped, &dur); err != nil {
			return nil, errors.NewStorageError("failed to scan stage", err).WithContext("run_id", runID)
		}
		st.Duration = time.Duration(dur)
		run.Stages = append(run.Stages, st)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to load stages", err).WithContext("run_id", runID)
	}

	return &run, nil
}

// Incidents returns the incidents stored for runID in output order.
func (s *Store) Incidents(ctx context.Context, runID string) ([]domain.Incident, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT number, first_opened_at, last_resolved_at,
		last_closed_at, final_priority, final_state, assignment_group_mode, events_count,
		resolution_hours, sla_breached, quick_resolution, priority_rank
		FROM incidents WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, errors.NewStorageError("failed to load incidents", err).WithContext("run_id", runID)
	}
	defer rows.Close()

	var out []domain.Incident
	for rows.Next() {
		var (
			inc                      domain.Incident
			opened, resolved, closed sql.NullString
			priority, group          sql.NullString
			events, rank             sql.NullInt64
			hours                    sql.NullFloat64
			breached, quick          sql.NullBool
		)
		if err := rows.Scan(&inc.Number, &opened, &resolved, &closed, &priority, &inc.State,
			&group, &events, &hours, &breached, &quick, &rank); err != nil {
			return nil, errors.NewStorageError("failed to scan incident", err).WithContext("run_id", runID)
		}

		if inc.OpenedAt, err = parseNullTime(opened); err != nil {
			return nil, errors.NewStorageError("bad first_opened_at", err).WithContext("number", inc.Number)
		}
		if inc.ResolvedAt, err = parseNullTime(resolved); err != nil {
			return nil, errors.NewStorageError("bad last_resolved_at", err).WithContext("number", inc.Number)
		}
		if inc.ClosedAt, err = parseNullTime(closed); err != nil {
			return nil, errors.NewStorageError("bad last_closed_at", err).WithContext("number", inc.Number)
		}
		if priority.Valid {
			inc.Priority = domain.Ptr(priority.String)
		}
		if group.Valid {
			inc.AssignmentGroup = domain.Ptr(group.String)
		}
		if events.Valid {
			inc.EventsCount = domain.Ptr(events.Int64)
		}
		if hours.Valid {
			inc.ResolutionHours = domain.Ptr(hours.Float64)
		}
		if breached.Valid {
			inc.SLABreached = domain.Ptr(breached.Bool)
		}
		if quick.Valid {
			inc.QuickResolution = domain.Ptr(quick.Bool)
		}
		if rank.Valid {
			inc.PriorityRank = domain.Ptr(int(rank.Int64))
		}
		out = append(out, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to load incidents", err).WithContext("run_id", runID)
	}
	return out, nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
