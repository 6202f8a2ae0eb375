package mirror

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/coursebuilder/internal/events"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/history"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
	"git.home.luguber.info/inful/coursebuilder/internal/metrics"
)

// Options configure a Syncer.
type Options struct {
	// Concurrency bounds the parallel fetches within one listing page.
	Concurrency int
	// Courses bounds how many courses are mirrored at once.
	Courses   int
	Logger    *slog.Logger
	Recorder  metrics.Recorder
	Publisher events.Publisher
}

// Syncer mirrors <key> objects of a bucket to <dest>/<key>.
type Syncer struct {
	bucket    Bucket
	dest      string
	opts      Options
	logger    *slog.Logger
	recorder  metrics.Recorder
	publisher events.Publisher
}

func NewSyncer(bucket Bucket, dest string, opts Options) *Syncer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Courses <= 0 {
		opts.Courses = 1
	}
	s := &Syncer{
		bucket:    bucket,
		dest:      dest,
		opts:      opts,
		logger:    opts.Logger,
		recorder:  opts.Recorder,
		publisher: opts.Publisher,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.recorder == nil {
		s.recorder = metrics.NoopRecorder{}
	}
	if s.publisher == nil {
		s.publisher = events.NoopPublisher{}
	}
	return s
}

// CourseResult counts what happened to one course prefix.
type CourseResult struct {
	CourseID string
	Pages    int
	Listed   int
	Fetched  int
	Skipped  int
}

// SyncCourse mirrors the prefix <courseID>/. Pages are processed one at a
// time: the next page is listed only after every fetch of the current page
// has finished. Any listing or fetch error fails the course.
func (s *Syncer) SyncCourse(ctx context.Context, courseID string) (CourseResult, error) {
	start := time.Now()
	res := CourseResult{CourseID: courseID}
	prefix := strings.TrimSuffix(courseID, "/") + "/"
	logger := s.logger.With(logfields.Course(courseID))

	var fetched, skipped atomic.Int64
	token := ""
	for {
		page, err := s.bucket.ListPage(ctx, prefix, token)
		if err != nil {
			return res, errors.WrapError(err, errors.CategorySync, "failed to list objects").
				WithContext("course", courseID).
				WithContext("prefix", prefix).Build()
		}
		res.Pages++
		res.Listed += len(page.Objects)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Concurrency)
		for _, obj := range page.Objects {
			if strings.HasSuffix(obj.Key, "/") {
				continue
			}
			g.Go(func() error {
				local, err := s.localPath(obj.Key)
				if err != nil {
					return err
				}
				if !needsFetch(local, obj.LastModified) {
					skipped.Add(1)
					s.recorder.IncSyncObject(metrics.ObjectSkipped)
					return nil
				}
				if err := s.fetch(gctx, obj, local); err != nil {
					s.recorder.IncSyncObject(metrics.ObjectFailed)
					return err
				}
				fetched.Add(1)
				s.recorder.IncSyncObject(metrics.ObjectFetched)
				logger.Debug("Fetched object", logfields.Key(obj.Key))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			res.Fetched, res.Skipped = int(fetched.Load()), int(skipped.Load())
			return res, err
		}

		if !page.Truncated || page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	res.Fetched, res.Skipped = int(fetched.Load()), int(skipped.Load())
	s.recorder.ObserveSyncDuration(time.Since(start))
	logger.Info("Course mirrored",
		slog.Int("pages", res.Pages),
		slog.Int("fetched", res.Fetched),
		slog.Int("skipped", res.Skipped),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return res, nil
}

// localPath maps a key into the destination directory.
func (s *Syncer) localPath(key string) (string, error) {
	target := filepath.Join(s.dest, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.dest, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", errors.SyncError("object key escapes destination").Permanent().
			WithContext("key", key).Build()
	}
	return target, nil
}

// needsFetch reports whether no local file exists or the remote object is
// newer than it.
func needsFetch(local string, remoteModified time.Time) bool {
	info, err := os.Stat(local)
	if err != nil {
		return true
	}
	return remoteModified.After(info.ModTime())
}

// fetch downloads obj to local through a temp file and stamps the remote
// modification time on it.
func (s *Syncer) fetch(ctx context.Context, obj Object, local string) error {
	wrap := func(err error, msg string) error {
		return errors.WrapError(err, errors.CategorySync, msg).
			WithContext("key", obj.Key).
			WithContext("path", local).Build()
	}

	rc, err := s.bucket.Fetch(ctx, obj.Key)
	if err != nil {
		return wrap(err, "failed to fetch object")
	}
	defer func() { _ = rc.Close() }()

	if err := os.MkdirAll(filepath.Dir(local), 0o750); err != nil {
		return wrap(err, "failed to create directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(local), "."+filepath.Base(local)+".part-*")
	if err != nil {
		return wrap(err, "failed to create temp file")
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := io.Copy(tmp, rc); err != nil {
		_ = tmp.Close()
		cleanup()
		return wrap(err, "failed to download object")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return wrap(err, "failed to write object")
	}
	if !obj.LastModified.IsZero() {
		if err := os.Chtimes(tmpPath, obj.LastModified, obj.LastModified); err != nil {
			cleanup()
			return wrap(err, "failed to set modification time")
		}
	}
	if err := os.Rename(tmpPath, local); err != nil {
		cleanup()
		return wrap(err, "failed to move object into place")
	}
	return nil
}

// Report collects the outcome of SyncAll.
type Report struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Results   map[string]CourseResult
	Failed    map[string]error
}

// Succeeded returns the mirrored course ids, sorted.
func (r *Report) Succeeded() []string {
	ids := make([]string, 0, len(r.Results))
	for id := range r.Results {
		if _, failed := r.Failed[id]; !failed {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Err returns a sync error naming the failed courses, or nil.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return errors.SyncError("course mirror failed").
		WithContext("courses", strings.Join(ids, ",")).Build()
}

// HistoryRun converts the report for the run history store.
func (r *Report) HistoryRun() history.Run {
	run := history.Run{ID: r.RunID, Kind: history.KindSync, StartedAt: r.StartedAt, Duration: r.Duration}
	for _, id := range r.Succeeded() {
		run.Courses = append(run.Courses, history.CourseResult{
			CourseID: id, Status: history.StatusSucceeded, Documents: r.Results[id].Fetched,
		})
	}
	ids := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		run.Courses = append(run.Courses, history.CourseResult{
			CourseID: id, Status: history.StatusFailed, Error: r.Failed[id].Error(),
		})
	}
	return run
}

// SyncAll mirrors ids in parallel. A failing course is recorded in the
// report and does not stop the others. The returned error is only set when
// ctx was cancelled.
func (s *Syncer) SyncAll(ctx context.Context, ids []string) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: start,
		Results:   make(map[string]CourseResult),
		Failed:    make(map[string]error),
	}
	s.recorder.SetSyncConcurrency(s.opts.Concurrency)
	s.logger.Info("Starting mirror", slog.Int("courses", len(ids)), slog.String("run_id", report.RunID))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.opts.Courses)
	for _, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := s.SyncCourse(ctx, id)
			mu.Lock()
			report.Results[id] = res
			if err != nil {
				report.Failed[id] = err
			}
			mu.Unlock()
			if err != nil {
				s.logger.Error("Course mirror failed", logfields.Course(id), logfields.Error(err))
				return nil
			}
			if perr := s.publisher.Publish(ctx, events.CourseEvent{
				Type:     events.TypeCourseSynced,
				RunID:    report.RunID,
				CourseID: id,
				Fetched:  res.Fetched,
				Output:   filepath.Join(s.dest, id),
			}); perr != nil {
				s.logger.Warn("Failed to publish course event", logfields.Course(id), logfields.Error(perr))
			}
			return nil
		})
	}
	_ = g.Wait()
	report.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	s.logger.Info("Mirror finished",
		slog.Int("succeeded", len(report.Succeeded())),
		slog.Int("failed", len(report.Failed)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}
