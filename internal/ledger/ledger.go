// Package ledger records batch runs in a SQLite database so earlier
// conversions can be listed and audited. It uses the pure Go
// modernc.org/sqlite driver.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	lerrors "github.com/FocuswithJustin/lawlist/core/errors"
	"github.com/FocuswithJustin/lawlist/internal/batch"
)

const driverName = "sqlite"

// timeLayout has a fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started     TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	input_dir   TEXT NOT NULL,
	output_dir  TEXT NOT NULL,
	total       INTEGER NOT NULL,
	succeeded   INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	diverged    INTEGER NOT NULL,
	splits      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS files (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	seq         INTEGER NOT NULL,
	input       TEXT NOT NULL,
	output      TEXT NOT NULL,
	input_hash  TEXT NOT NULL,
	output_hash TEXT NOT NULL,
	kind        TEXT NOT NULL,
	message     TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS runs_started ON runs(started);
`

// Run is one recorded batch run.
type Run struct {
	ID        string
	Started   time.Time
	Duration  time.Duration
	InputDir  string
	OutputDir string
	Total     int
	Succeeded int
	Failed    int
	Diverged  int
	Splits    int
	Files     []File
}

// File is one input of a run. Kind and Error are empty for converted files;
// the hashes are empty for failed ones.
type File struct {
	Input      string
	Output     string
	InputHash  string
	OutputHash string
	Kind       string
	Error      string
}

// FromSummary converts a batch summary into a ledger entry.
func FromSummary(sum *batch.Summary) Run {
	r := Run{
		ID:        sum.RunID,
		Started:   sum.Started,
		Duration:  sum.Duration,
		InputDir:  sum.InputDir,
		OutputDir: sum.OutputDir,
		Total:     len(sum.Files),
		Succeeded: sum.Succeeded,
		Failed:    sum.Failed,
		Diverged:  sum.Diverged,
		Splits:    sum.Stats.Splits,
	}
	for _, f := range sum.Files {
		file := File{Input: f.Rel, Output: f.Output, Kind: f.Kind}
		if f.Err != nil {
			file.Error = f.Err.Error()
		}
		if f.Result != nil {
			file.InputHash = f.Result.InputHash
			file.OutputHash = f.Result.OutputHash
		}
		r.Files = append(r.Files, file)
	}
	return r
}

// Ledger is an open run database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, lerrors.NewIO("open ledger", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, lerrors.NewIO("init ledger", path, err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores r and its files in one transaction.
func (l *Ledger) Record(ctx context.Context, r Run) (err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started, duration_ms, input_dir, output_dir, total, succeeded, failed, diverged, splits)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Started.UTC().Format(timeLayout), r.Duration.Milliseconds(),
		r.InputDir, r.OutputDir, r.Total, r.Succeeded, r.Failed, r.Diverged, r.Splits)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (run_id, seq, input, output, input_hash, output_hash, kind, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range r.Files {
		if _, err = stmt.ExecContext(ctx, r.ID, i, f.Input, f.Output, f.InputHash, f.OutputHash, f.Kind, f.Error); err != nil {
			return fmt.Errorf("failed to record file %s: %w", f.Input, err)
		}
	}
	return tx.Commit()
}

// Runs returns up to limit runs, newest first, without their files.
// A limit of zero or less returns every run.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, started, duration_ms, input_dir, output_dir, total, succeeded, failed, diverged, splits
		 FROM runs ORDER BY started DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started string
			ms      int64
		)
		if err := rows.Scan(&r.ID, &started, &ms, &r.InputDir, &r.OutputDir,
			&r.Total, &r.Succeeded, &r.Failed, &r.Diverged, &r.Splits); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.Started, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s has invalid start time %q: %w", r.ID, started, err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Files returns the files of a run in input order.
func (l *Ledger) Files(ctx context.Context, runID string) ([]File, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT input, output, input_hash, output_hash, kind, message
		 FROM files WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.Input, &f.Output, &f.InputHash, &f.OutputHash, &f.Kind, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
