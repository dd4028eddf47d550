package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run summarises one dispatched invocation.
type Run struct {
	ID         string
	Kind       string
	Input      string
	Output     string
	Artist     string
	Album      string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Failed     int
	Error      string
	Jobs       []Job
}

// Job records the outcome of one extraction.
type Job struct {
	Seq        int
	TrackIndex int
	Name       string
	Output     string
	ExitCode   int
	Error      string
	Elapsed    time.Duration
}

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RecordRun stores a run and its jobs in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, kind, input_path, output_dir, artist, album,
            started_at, finished_at, succeeded, failed, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Kind,
		run.Input,
		run.Output,
		nullableString(run.Artist),
		nullableString(run.Album),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.Succeeded,
		run.Failed,
		nullableString(run.Error),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, job := range run.Jobs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO jobs (
                run_id, seq, track_index, name, output_path, exit_code, error_message, elapsed_ms
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			job.Seq,
			job.TrackIndex,
			job.Name,
			job.Output,
			job.ExitCode,
			nullableString(job.Error),
			job.Elapsed.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert job %d: %w", job.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, without their jobs.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, input_path, output_dir, artist, album,
                started_at, finished_at, succeeded, failed, error_message
         FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its jobs, or nil when the id is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, input_path, output_dir, artist, album,
                started_at, finished_at, succeeded, failed, error_message
         FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, track_index, name, output_path, exit_code, error_message, elapsed_ms
         FROM jobs WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var job Job
		var errMsg sql.NullString
		var elapsedMS int64
		if err := rows.Scan(&job.Seq, &job.TrackIndex, &job.Name, &job.Output, &job.ExitCode, &errMsg, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.Error = errMsg.String
		job.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		run.Jobs = append(run.Jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var artist, album, errMsg sql.NullString
	var started, finished string
	if err := row.Scan(&run.ID, &run.Kind, &run.Input, &run.Output, &artist, &album,
		&started, &finished, &run.Succeeded, &run.Failed, &errMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Artist = artist.String
	run.Album = album.String
	run.Error = errMsg.String
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
