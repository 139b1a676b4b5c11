package backfill

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	apperrors "github.com/brightsciences/lessonpress/internal/errors"
)

// Status is the outcome recorded for one (record, template, grade) unit.
type Status string

const (
	StatusRendered Status = "rendered"
	StatusFailed   Status = "failed"
)

// Entry is one row of the render ledger.
type Entry struct {
	RecordPath  string // relative to the content root
	Template    string
	GradeLevel  string
	Fingerprint string
	Status      Status
	Attempts    int
	RunID       string
	OutputPath  string
	LastError   string
	UpdatedAt   time.Time
}

// Ledger records what has been rendered from which record state, backed by
// SQLite. A render is skipped when the ledger holds a successful entry for
// the same fingerprint and the output file still exists.
type Ledger struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewLedger opens (creating if needed) the ledger database at the given
// path. Use ":memory:" for tests.
func NewLedger(dbPath string) (*Ledger, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, apperrors.LedgerError("create ledger directory", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.LedgerError("open ledger database", err)
	}
	// SQLite is single-writer, and a second pool connection to ":memory:"
	// would see its own empty database.
	db.SetMaxOpenConns(1)
	l := &Ledger{db: db}
	if err := l.initialize(); err != nil {
		_ = db.Close()
		return nil, apperrors.LedgerError("initialize ledger schema", err)
	}
	return l, nil
}

func (l *Ledger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS renders (
		record_path TEXT NOT NULL,
		template    TEXT NOT NULL,
		grade_level TEXT NOT NULL DEFAULT '',
		fingerprint TEXT NOT NULL,
		status      TEXT NOT NULL,
		attempts    INTEGER NOT NULL DEFAULT 0,
		run_id      TEXT NOT NULL DEFAULT '',
		output_path TEXT NOT NULL DEFAULT '',
		last_error  TEXT NOT NULL DEFAULT '',
		updated_at  INTEGER NOT NULL,
		PRIMARY KEY (record_path, template, grade_level)
	);
	CREATE INDEX IF NOT EXISTS idx_renders_status ON renders(status);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Get returns the entry for one (record, template, grade) unit, or nil when
// the unit has never been rendered.
func (l *Ledger) Get(ctx context.Context, recordPath, template, gradeLevel string) (*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	row := l.db.QueryRowContext(ctx,
		`SELECT record_path, template, grade_level, fingerprint, status, attempts,
		        run_id, output_path, last_error, updated_at
		 FROM renders WHERE record_path = ? AND template = ? AND grade_level = ?`,
		recordPath, template, gradeLevel,
	)
	var e Entry
	var updated int64
	err := row.Scan(&e.RecordPath, &e.Template, &e.GradeLevel, &e.Fingerprint, &e.Status,
		&e.Attempts, &e.RunID, &e.OutputPath, &e.LastError, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.LedgerError("read ledger entry", err)
	}
	e.UpdatedAt = time.Unix(updated, 0)
	return &e, nil
}

// Upsert writes the entry, replacing any previous row for the same unit.
func (l *Ledger) Upsert(ctx context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO renders (record_path, template, grade_level, fingerprint, status,
		                      attempts, run_id, output_path, last_error, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(record_path, template, grade_level) DO UPDATE SET
		   fingerprint = excluded.fingerprint,
		   status      = excluded.status,
		   attempts    = excluded.attempts,
		   run_id      = excluded.run_id,
		   output_path = excluded.output_path,
		   last_error  = excluded.last_error,
		   updated_at  = excluded.updated_at`,
		e.RecordPath, e.Template, e.GradeLevel, e.Fingerprint, string(e.Status),
		e.Attempts, e.RunID, e.OutputPath, e.LastError, e.UpdatedAt.Unix(),
	)
	if err != nil {
		return apperrors.LedgerError("write ledger entry", err)
	}
	return nil
}

// ClearUnreadable removes failure rows written while the record file itself
// could not be loaded. Those rows carry no grade level, so they are never
// overwritten once the record is repaired and renders under its real grade.
func (l *Ledger) ClearUnreadable(ctx context.Context, recordPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.ExecContext(ctx,
		`DELETE FROM renders WHERE record_path = ? AND grade_level = ''`, recordPath)
	if err != nil {
		return apperrors.LedgerError("clear unreadable-record entries", err)
	}
	return nil
}

// Stats returns entry counts by status.
func (l *Ledger) Stats(ctx context.Context) (map[Status]int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM renders GROUP BY status`)
	if err != nil {
		return nil, apperrors.LedgerError("read ledger stats", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, apperrors.LedgerError("scan ledger stats", err)
		}
		stats[Status(s)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.LedgerError("iterate ledger stats", err)
	}
	return stats, nil
}

// Prune deletes entries whose record path is not in keep. Used by the sweep
// to drop rows for records that were deleted from the content tree.
func (l *Ledger) Prune(ctx context.Context, keep map[string]bool) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.db.QueryContext(ctx, `SELECT DISTINCT record_path FROM renders`)
	if err != nil {
		return 0, apperrors.LedgerError("read ledger paths", err)
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, apperrors.LedgerError("scan ledger paths", err)
		}
		if !keep[p] {
			stale = append(stale, p)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, apperrors.LedgerError("iterate ledger paths", err)
	}
	rows.Close()

	pruned := 0
	for _, p := range stale {
		res, err := l.db.ExecContext(ctx, `DELETE FROM renders WHERE record_path = ?`, p)
		if err != nil {
			return pruned, apperrors.LedgerError(fmt.Sprintf("prune ledger entries for %s", p), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			pruned += int(n)
		}
	}
	return pruned, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Close()
}
