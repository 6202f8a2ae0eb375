package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the history database.
// Use ":memory:" for in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "open history database").
			WithContext("path", dbPath).Build()
	}
	// An in-memory database lives per connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.WrapError(err, errors.CategoryInternal, "initialize history schema").
			WithContext("path", dbPath).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS course_results (
		run_id TEXT NOT NULL REFERENCES runs(id),
		course_id TEXT NOT NULL,
		status TEXT NOT NULL,
		documents INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_course_results_course ON course_results(course_id);
	CREATE INDEX IF NOT EXISTS idx_course_results_run ON course_results(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores run in one transaction. An empty ID gets a fresh uuid and a
// zero StartedAt the current time.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, kind, started_at, duration_ms) VALUES (?, ?, ?, ?)",
		run.ID, string(run.Kind), run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, c := range run.Courses {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO course_results (run_id, course_id, status, documents, error) VALUES (?, ?, ?, ?, ?)",
			run.ID, c.CourseID, string(c.Status), c.Documents, nullable(c.Error),
		); err != nil {
			return fmt.Errorf("insert course result %s: %w", c.CourseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first, with their course results
// in course id order.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, started_at, duration_ms FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		var r Run
		var kind string
		var startedMS, durationMS int64
		if err := rows.Scan(&r.ID, &kind, &startedMS, &durationMS); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Kind = Kind(kind)
		r.StartedAt = time.UnixMilli(startedMS)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	_ = rows.Close()

	for i := range runs {
		courses, err := s.courseResults(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Courses = courses
	}
	return runs, nil
}

func (s *SQLiteStore) courseResults(ctx context.Context, runID string) ([]CourseResult, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT course_id, status, documents, error FROM course_results WHERE run_id = ? ORDER BY course_id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query course results: %w", err)
	}
	defer rows.Close()

	var out []CourseResult
	for rows.Next() {
		c, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course results: %w", err)
	}
	return out, nil
}

// CourseRuns returns the results of courseID across runs, newest first.
func (s *SQLiteStore) CourseRuns(ctx context.Context, courseID string, limit int) ([]CourseRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.kind, r.started_at, c.course_id, c.status, c.documents, c.error
		FROM course_results c JOIN runs r ON r.id = c.run_id
		WHERE c.course_id = ?
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?`,
		courseID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query course runs: %w", err)
	}
	defer rows.Close()

	var out []CourseRun
	for rows.Next() {
		var cr CourseRun
		var kind, status string
		var startedMS int64
		var errText sql.NullString
		if err := rows.Scan(&cr.RunID, &kind, &startedMS, &cr.CourseID, &status, &cr.Documents, &errText); err != nil {
			return nil, fmt.Errorf("scan course run: %w", err)
		}
		cr.Kind = Kind(kind)
		cr.StartedAt = time.UnixMilli(startedMS)
		cr.Status = Status(status)
		cr.Error = errText.String
		out = append(out, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course runs: %w", err)
	}
	return out, nil
}

func scanResult(rows *sql.Rows) (CourseResult, error) {
	var c CourseResult
	var status string
	var errText sql.NullString
	if err := rows.Scan(&c.CourseID, &status, &c.Documents, &errText); err != nil {
		return CourseResult{}, fmt.Errorf("scan course result: %w", err)
	}
	c.Status = Status(status)
	c.Error = errText.String
	return c, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
