package metrics

import "testing"

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncCourseResult(ResultSkipped)
	r.IncSyncObject(ObjectFailed)
	r.SetSyncConcurrency(4)
}
