// Package runhistory persists a durable, queryable log of orchestration
// batches and per-plan run outcomes to SQLite, so a caller can audit
// prior runs without re-executing them (§4.3 expansion). It is adapted
// from the teacher's SQLite caching layer's open/WAL/schema-embed
// shape, repurposed from "cache of a remote API" to "durable log of
// orchestration runs," with its own explicit PRAGMA user_version check
// in place of the teacher's driver-error-string sniffing.
package runhistory

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape (a new
// column, a renamed table). Open compares it against the database's
// own PRAGMA user_version rather than sniffing driver error strings,
// so a stale database is detected before any query against it can
// fail.
const schemaVersion = 1

// Store wraps the SQLite-backed run history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at dbPath, recreating it if
// the existing file carries a schema version other than schemaVersion.
func Open(dbPath string) (*Store, error) {
	store, version, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	if version != 0 && version != schemaVersion {
		store.Close()
		if removeErr := os.Remove(dbPath); removeErr != nil && !os.IsNotExist(removeErr) {
			return nil, fmt.Errorf("remove incompatible run history db (schema version %d, want %d): %w", version, schemaVersion, removeErr)
		}
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
		store, _, err = openDB(dbPath)
		if err != nil {
			return nil, err
		}
	}
	return store, nil
}

// openDB opens dbPath, applies pragmas and the schema, and reports the
// schema version the database carried before this call (0 for a
// freshly created file).
func openDB(dbPath string) (*Store, int, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, 0, fmt.Errorf("create run history directory: %w", err)
	}

	escapedPath := strings.ReplaceAll(dbPath, " ", "%20")
	connStr := "file:" + escapedPath + "?_time_format=sqlite"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, 0, fmt.Errorf("open run history database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("enable foreign keys: %w", err)
	}

	var existingVersion int
	if err := db.QueryRow("PRAGMA user_version").Scan(&existingVersion); err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("read run history schema version: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, 0, fmt.Errorf("initialize run history schema: %w", err)
	}
	if existingVersion == 0 {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", schemaVersion)); err != nil {
			db.Close()
			return nil, 0, fmt.Errorf("stamp run history schema version: %w", err)
		}
	}

	return &Store{db: db}, existingVersion, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// BatchRecord is one row of the batches table.
type BatchRecord struct {
	ID            int64
	ProjectFolder string
	Mode          string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// PlanRunRecord is one row of the plan_runs table.
type PlanRunRecord struct {
	ID            int64
	BatchID       int64
	ProjectFolder string
	PlanNumber    string
	State         string
	ExitCode      int
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    time.Time
}

const sqliteTimeFormat = "2006-01-02 15:04:05.999999999Z07:00"

// RecordBatch inserts one batch and its plan runs in a single
// transaction, returning the assigned batch id.
func (s *Store) RecordBatch(ctx context.Context, batch BatchRecord, runs []PlanRunRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin run history transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO batches (project_folder, mode, started_at, finished_at) VALUES (?, ?, ?, ?)`,
		batch.ProjectFolder, batch.Mode, batch.StartedAt.Format(sqliteTimeFormat), batch.FinishedAt.Format(sqliteTimeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read batch id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO plan_runs (batch_id, project_folder, plan_number, state, exit_code, error_message, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare plan run insert: %w", err)
	}
	defer stmt.Close()

	for _, run := range runs {
		if _, err := stmt.ExecContext(ctx,
			batchID, batch.ProjectFolder, run.PlanNumber, run.State, run.ExitCode, run.ErrorMessage,
			run.StartedAt.Format(sqliteTimeFormat), run.FinishedAt.Format(sqliteTimeFormat),
		); err != nil {
			return 0, fmt.Errorf("insert plan run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run history transaction: %w", err)
	}
	return batchID, nil
}

// PlanRunsFor returns every recorded run of planNumber within
// projectFolder, most recent first.
func (s *Store) PlanRunsFor(ctx context.Context, projectFolder, planNumber string) ([]PlanRunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch_id, project_folder, plan_number, state, exit_code, error_message, started_at, finished_at
		 FROM plan_runs WHERE project_folder = ? AND plan_number = ? ORDER BY started_at DESC`,
		projectFolder, planNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("query plan runs: %w", err)
	}
	defer rows.Close()

	var out []PlanRunRecord
	for rows.Next() {
		var r PlanRunRecord
		var started, finished string
		if err := rows.Scan(&r.ID, &r.BatchID, &r.ProjectFolder, &r.PlanNumber, &r.State, &r.ExitCode, &r.ErrorMessage, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan plan run: %w", err)
		}
		r.StartedAt = parseSQLiteTime(started)
		r.FinishedAt = parseSQLiteTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

var sqliteTimeFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	sqliteTimeFormat,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
}

func parseSQLiteTime(s string) time.Time {
	for _, layout := range sqliteTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
