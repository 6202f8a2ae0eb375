package metrics

import "time"

// ResultLabel enumerates per-course outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultSkipped ResultLabel = "skipped"
)

// ObjectLabel enumerates what the mirror did with one listed object.
type ObjectLabel string

const (
	ObjectFetched ObjectLabel = "fetched"
	ObjectSkipped ObjectLabel = "skipped"
	ObjectFailed  ObjectLabel = "failed"
)

// Recorder defines observability hooks for course builds and mirror runs.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBatchDuration(d time.Duration)
	IncCourseResult(result ResultLabel)
	AddDocuments(written, unchanged int)
	IncSyncObject(result ObjectLabel)
	ObserveSyncDuration(d time.Duration)
	SetSyncConcurrency(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBatchDuration(time.Duration)         {}
func (NoopRecorder) IncCourseResult(ResultLabel)                {}
func (NoopRecorder) AddDocuments(int, int)                      {}
func (NoopRecorder) IncSyncObject(ObjectLabel)                  {}
func (NoopRecorder) ObserveSyncDuration(time.Duration)          {}
func (NoopRecorder) SetSyncConcurrency(int)                     {}
