package runstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old history databases can simply be deleted.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
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

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

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
		return fmt.Errorf("%w: database has version %d, expected %d (delete the history database to reset)",
			ErrSchemaMismatch, version, schemaVersion)
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

// BeginRun inserts a new run row.
func (s *Store) BeginRun(ctx context.Context, id, manifestPath string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, manifest_path, started_at) VALUES (?, ?, ?)",
		id, manifestPath, now,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun records the final counts and completion time of a run.
func (s *Store) FinishRun(ctx context.Context, id string, successCount, failureCount int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, success_count = ?, failure_count = ? WHERE id = ?",
		now, successCount, failureCount, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: run %s not found", id)
	}
	return nil
}

// RecordCard persists one card outcome.
func (s *Store) RecordCard(ctx context.Context, result CardResult) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO card_results (run_id, card_key, status, stage, message, artifact, fingerprint, elapsed_ms, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Key, string(result.Status), result.Stage, result.Message,
		result.Artifact, result.Fingerprint, result.Elapsed.Milliseconds(), now,
	)
	if err != nil {
		return fmt.Errorf("insert card result: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, manifest_path, started_at, finished_at, success_count, failure_count
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started string
		var finished sql.NullString
		if err := rows.Scan(&run.ID, &run.ManifestPath, &started, &finished,
			&run.SuccessCount, &run.FailureCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse run start time: %w", err)
		}
		if finished.Valid {
			parsed, err := time.Parse(time.RFC3339Nano, finished.String)
			if err != nil {
				return nil, fmt.Errorf("parse run finish time: %w", err)
			}
			run.FinishedAt = &parsed
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// CardsForRun returns the card outcomes of one run in recording order.
func (s *Store) CardsForRun(ctx context.Context, runID string) ([]CardResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, card_key, status, stage, message, artifact, fingerprint, elapsed_ms
         FROM card_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query card results: %w", err)
	}
	defer rows.Close()

	var results []CardResult
	for rows.Next() {
		var r CardResult
		var status string
		var elapsedMs int64
		if err := rows.Scan(&r.RunID, &r.Key, &status, &r.Stage, &r.Message, &r.Artifact, &r.Fingerprint, &elapsedMs); err != nil {
			return nil, fmt.Errorf("scan card result: %w", err)
		}
		r.Status = Status(status)
		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}
