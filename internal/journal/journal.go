// Package journal records pipeline runs in a local SQLite database so
// `provctl history` can answer what ran, when, and how it exited.
//
// Recording is best effort: journal failures are logged and never
// change a pipeline's outcome.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"provctl/internal/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	command     TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	exit_code   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_steps (
	run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx         INTEGER NOT NULL,
	description TEXT NOT NULL,
	exit_code   INTEGER NOT NULL,
	diagnostic  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, idx)
);
`

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one recorded pipeline execution.
type Run struct {
	ID         int64
	Command    string
	StartedAt  time.Time
	FinishedAt time.Time
	ExitCode   int
	Steps      []pipeline.StepResult
}

// Journal is a SQLite-backed run log.
type Journal struct {
	db *sql.DB
}

// DefaultPath returns the journal location. It respects XDG_STATE_HOME,
// falling back to ~/.local/state/provctl/journal.db.
func DefaultPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "state", "provctl", "journal.db")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "provctl", "journal.db")
}

// Open creates or opens the journal at path, applying the schema.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record stores one run with its step outcomes and returns its id.
func (j *Journal) Record(ctx context.Context, run Run) (int64, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (command, started_at, finished_at, exit_code) VALUES (?, ?, ?, ?)`,
		run.Command,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.ExitCode,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, step := range run.Steps {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_steps (run_id, idx, description, exit_code, diagnostic) VALUES (?, ?, ?, ?, ?)`,
			id, step.Index, step.Description, step.Code, step.Diagnostic,
		); err != nil {
			return 0, fmt.Errorf("insert step %d: %w", step.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first, without step detail.
// limit <= 0 means no limit.
func (j *Journal) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, command, started_at, finished_at, exit_code FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
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
	return runs, rows.Err()
}

// Get returns one run with its step outcomes.
func (j *Journal) Get(ctx context.Context, id int64) (*Run, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, command, started_at, finished_at, exit_code FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT idx, description, exit_code, diagnostic FROM run_steps WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var step pipeline.StepResult
		if err := rows.Scan(&step.Index, &step.Description, &step.Code, &step.Diagnostic); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		run.Steps = append(run.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// Prune deletes all but the newest keep runs, returning how many were
// removed.
func (j *Journal) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := j.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune count: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var started, finished string
	if err := row.Scan(&run.ID, &run.Command, &started, &finished, &run.ExitCode); err != nil {
		return Run{}, err
	}

	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return run, nil
}
