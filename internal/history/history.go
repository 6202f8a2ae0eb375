// Package history keeps a record of conversion and mirror runs in SQLite so
// operators can see which courses failed in previous runs.
package history

import (
	"context"
	"time"
)

// Kind is the command that produced a run.
type Kind string

const (
	KindConvert Kind = "convert"
	KindSync    Kind = "sync"
)

// Status of one course within a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// CourseResult is the outcome of one course within a run.
type CourseResult struct {
	CourseID  string
	Status    Status
	Documents int
	Error     string
}

// Run is one invocation of convert or sync.
type Run struct {
	ID        string
	Kind      Kind
	StartedAt time.Time
	Duration  time.Duration
	Courses   []CourseResult
}

// Counts tallies the course results by status.
func (r Run) Counts() (succeeded, failed, skipped int) {
	for _, c := range r.Courses {
		switch c.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return succeeded, failed, skipped
}

// Store persists runs.
type Store interface {
	// Record stores run and its course results.
	Record(ctx context.Context, run Run) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// CourseRuns returns the results of courseID across runs, newest first.
	CourseRuns(ctx context.Context, courseID string, limit int) ([]CourseRun, error)

	Close() error
}

// CourseRun is a course result together with the run it belongs to.
type CourseRun struct {
	RunID     string
	Kind      Kind
	StartedAt time.Time
	CourseResult
}
