package build

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/history"
)

// Summary is the outcome of one batch.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	Succeeded []string
	Failed    map[string]error
	Skipped   []string

	// Stats holds the writer statistics of succeeded courses.
	Stats map[string]WriteStats
}

func newSummary(runID string, started time.Time) *Summary {
	return &Summary{
		RunID:     runID,
		StartedAt: started,
		Failed:    make(map[string]error),
		Stats:     make(map[string]WriteStats),
	}
}

func (s *Summary) sort() {
	sort.Strings(s.Succeeded)
	sort.Strings(s.Skipped)
}

// FailedIDs returns the failed course ids, sorted.
func (s *Summary) FailedIDs() []string {
	ids := make([]string, 0, len(s.Failed))
	for id := range s.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Err returns a build error naming the failed courses, or nil.
func (s *Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	ids := s.FailedIDs()
	return errors.BuildError(fmt.Sprintf("%d course(s) failed", len(ids))).
		WithContext("courses", strings.Join(ids, ",")).Build()
}

// String renders the one-line summary printed by the CLI.
func (s *Summary) String() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped in %s",
		len(s.Succeeded), len(s.Failed), len(s.Skipped), s.Duration.Round(time.Millisecond))
}

// HistoryRun converts the summary for the run history store.
func (s *Summary) HistoryRun() history.Run {
	run := history.Run{ID: s.RunID, Kind: history.KindConvert, StartedAt: s.StartedAt, Duration: s.Duration}
	for _, id := range s.Succeeded {
		st := s.Stats[id]
		run.Courses = append(run.Courses, history.CourseResult{
			CourseID: id, Status: history.StatusSucceeded, Documents: st.Documents(),
		})
	}
	for _, id := range s.FailedIDs() {
		run.Courses = append(run.Courses, history.CourseResult{
			CourseID: id, Status: history.StatusFailed, Error: s.Failed[id].Error(),
		})
	}
	for _, id := range s.Skipped {
		run.Courses = append(run.Courses, history.CourseResult{CourseID: id, Status: history.StatusSkipped})
	}
	return run
}
