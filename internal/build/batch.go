package build

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/coursebuilder/internal/config"
	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/events"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/links"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
	"git.home.luguber.info/inful/coursebuilder/internal/metrics"
	"git.home.luguber.info/inful/coursebuilder/internal/sitetree"
)

// Stage names reported to the metrics recorder.
const (
	StageLoad     = "load"
	StageGenerate = "generate"
	StageWrite    = "write"
)

// ConverterFactory returns a text converter for one course build.
type ConverterFactory func() sitetree.TextConverter

// Batch converts a set of courses.
type Batch struct {
	cfg        *config.Config
	writer     *Writer
	recorder   metrics.Recorder
	publisher  events.Publisher
	converters ConverterFactory
	logger     *slog.Logger

	// known accumulates the cross-course lookup across runs so that a
	// partial rebuild still resolves links to courses outside the batch.
	mu    sync.Mutex
	known map[string]string
}

// NewBatch creates a batch runner for cfg.
func NewBatch(cfg *config.Config) *Batch {
	return &Batch{
		cfg:       cfg,
		writer:    NewWriter(cfg.Output.Directory, cfg.Output.Clean, nil),
		recorder:  metrics.NoopRecorder{},
		publisher: events.NoopPublisher{},
		logger:    slog.Default(),
		known:     make(map[string]string),
	}
}

// WithRecorder sets the metrics recorder.
func (b *Batch) WithRecorder(r metrics.Recorder) *Batch {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithPublisher sets the publisher for course-built events.
func (b *Batch) WithPublisher(p events.Publisher) *Batch {
	if p != nil {
		b.publisher = p
	}
	return b
}

// WithConverterFactory overrides the default Markdown converter (for testing).
func (b *Batch) WithConverterFactory(f ConverterFactory) *Batch {
	b.converters = f
	return b
}

func (b *Batch) WithLogger(logger *slog.Logger) *Batch {
	if logger != nil {
		b.logger = logger
		b.writer.logger = logger
	}
	return b
}

// Writer returns the writer used for output.
func (b *Batch) Writer() *Writer { return b.writer }

// CourseIDs returns the configured course set: the course list file when
// set, otherwise every course directory under the input directory.
func (b *Batch) CourseIDs() ([]string, error) {
	if b.cfg.Input.CoursesList != "" {
		return course.LoadList(b.cfg.Input.CoursesList)
	}
	return course.Discover(b.cfg.Input.CoursesDir)
}

type loaded struct {
	id     string
	course *course.Course
}

// Run converts ids, or the configured course set when ids is empty. The
// returned error is reserved for failures of the batch itself; per-course
// failures land in Summary.Failed.
func (b *Batch) Run(ctx context.Context, ids []string) (*Summary, error) {
	start := time.Now()
	summary := newSummary(uuid.NewString(), start)
	defer func() {
		summary.Duration = time.Since(start)
		b.recorder.ObserveBatchDuration(summary.Duration)
	}()

	if len(ids) == 0 {
		var err error
		if ids, err = b.CourseIDs(); err != nil {
			return summary, err
		}
	}
	ids = dedupe(ids)

	logger := b.logger.With(slog.String("run_id", summary.RunID))
	logger.Info("Starting conversion", slog.Int("courses", len(ids)))

	var mu sync.Mutex
	fail := func(id string, err error) {
		mu.Lock()
		summary.Failed[id] = err
		mu.Unlock()
		b.recorder.IncCourseResult(metrics.ResultFailed)
		logger.Error("Course failed", logfields.Course(id), logfields.Error(err))
	}

	courses, err := b.load(ctx, ids, summary, fail, logger)
	if err != nil {
		return summary, err
	}

	corpus := sitetree.NewCorpus()
	for _, l := range courses {
		corpus.Register(l.course)
	}
	cross := b.mergeKnown(corpus.CrossCourse())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())
	for _, l := range courses {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			stats, err := b.convert(gctx, corpus, cross, l.course, summary.RunID, logger)
			if err != nil {
				fail(l.id, err)
				return nil
			}
			mu.Lock()
			summary.Succeeded = append(summary.Succeeded, l.id)
			summary.Stats[l.id] = stats
			mu.Unlock()
			b.recorder.IncCourseResult(metrics.ResultSuccess)
			b.recorder.AddDocuments(stats.Written, stats.Unchanged)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	summary.sort()
	summary.Duration = time.Since(start)
	logger.Info("Conversion finished",
		slog.Int("succeeded", len(summary.Succeeded)),
		slog.Int("failed", len(summary.Failed)),
		slog.Int("skipped", len(summary.Skipped)),
		logfields.DurationMS(float64(summary.Duration.Milliseconds())))
	return summary, nil
}

// load reads course exports in parallel. Unreadable exports fail their
// course; unpublished courses are skipped unless configured otherwise.
func (b *Batch) load(ctx context.Context, ids []string, summary *Summary, fail func(string, error), logger *slog.Logger) ([]loaded, error) {
	stageStart := time.Now()
	defer func() { b.recorder.ObserveStageDuration(StageLoad, time.Since(stageStart)) }()

	results := make([]*course.Course, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := course.LoadFromDir(b.cfg.Input.CoursesDir, id)
			if err != nil {
				fail(id, err)
				return nil
			}
			if !c.IsPublished() && !b.cfg.Build.IncludeUnpublished {
				logger.Info("Skipping unpublished course", logfields.Course(id))
				mu.Lock()
				summary.Skipped = append(summary.Skipped, id)
				mu.Unlock()
				b.recorder.IncCourseResult(metrics.ResultSkipped)
				return nil
			}
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]loaded, 0, len(ids))
	for i, c := range results {
		if c != nil {
			out = append(out, loaded{id: ids[i], course: c})
		}
	}
	return out, nil
}

// convert resolves, generates and writes one course.
func (b *Batch) convert(ctx context.Context, corpus *sitetree.Corpus, cross map[string]string, c *course.Course, runID string, logger *slog.Logger) (WriteStats, error) {
	stageStart := time.Now()
	table, err := corpus.Add(c)
	if err != nil {
		return WriteStats{}, err
	}

	opts := sitetree.Options{
		Links: links.Options{
			StripStorage: b.cfg.Links.StripStorage,
			StaticPrefix: b.cfg.Links.StaticPrefix,
		},
		CrossCourse: cross,
		Logger:      logger,
	}
	if b.converters != nil {
		opts.Converter = b.converters()
	}

	gen := sitetree.NewGenerator(c, table, opts)
	var nodes []*sitetree.Node
	if b.cfg.Build.SkipScaffold {
		nodes, err = gen.Generate()
	} else {
		nodes, err = gen.Build()
	}
	if err != nil {
		return WriteStats{}, err
	}
	b.recorder.ObserveStageDuration(StageGenerate, time.Since(stageStart))

	stageStart = time.Now()
	stats, err := b.writer.WriteCourse(c.ShortURL, nodes)
	if err != nil {
		return stats, err
	}
	b.recorder.ObserveStageDuration(StageWrite, time.Since(stageStart))

	logger.Info("Course converted",
		logfields.Course(c.ShortURL),
		logfields.Documents(stats.Documents()),
		slog.Int("written", stats.Written))

	err = b.publisher.Publish(ctx, events.CourseEvent{
		Type:      events.TypeCourseBuilt,
		RunID:     runID,
		CourseID:  c.ShortURL,
		Documents: stats.Documents(),
		Written:   stats.Written,
		Output:    b.writer.CourseDir(c.ShortURL),
	})
	if err != nil {
		logger.Warn("Failed to publish course event", logfields.Course(c.ShortURL), logfields.Error(err))
	}
	return stats, nil
}

func (b *Batch) mergeKnown(current map[string]string) map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for uid, slug := range current {
		b.known[uid] = slug
	}
	out := make(map[string]string, len(b.known))
	for uid, slug := range b.known {
		out[uid] = slug
	}
	return out
}

func (b *Batch) workers() int {
	if b.cfg.Build.Workers > 0 {
		return b.cfg.Build.Workers
	}
	return 1
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// IsIntegrity reports whether a course failure came from a malformed graph.
func IsIntegrity(err error) bool {
	ce, ok := errors.AsClassified(err)
	return ok && ce.Category() == errors.CategoryIntegrity
}
