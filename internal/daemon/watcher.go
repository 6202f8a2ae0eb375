package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
)

// WatcherConfig controls how bursts of filesystem events are coalesced.
type WatcherConfig struct {
	// QuietWindow is how long the input must stay unchanged before a
	// rebuild is triggered.
	QuietWindow time.Duration
	// MaxDelay bounds how long a steady stream of changes can postpone it.
	MaxDelay time.Duration
}

// DefaultWatcherConfig is used by convert --watch.
var DefaultWatcherConfig = WatcherConfig{
	QuietWindow: 500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

// ChangeFunc receives the sorted ids of courses whose export changed.
type ChangeFunc func(ctx context.Context, courseIDs []string)

// CourseWatcher watches a courses directory and reports which course exports
// changed, debounced.
type CourseWatcher struct {
	root     string
	cfg      WatcherConfig
	onChange ChangeFunc
	logger   *slog.Logger
	ready    chan struct{}
}

// NewCourseWatcher creates a watcher over root.
func NewCourseWatcher(root string, cfg WatcherConfig, onChange ChangeFunc) (*CourseWatcher, error) {
	if onChange == nil {
		return nil, errors.ValidationError("change callback is required").Build()
	}
	if cfg.QuietWindow <= 0 {
		return nil, errors.ValidationError("quiet window must be > 0").Build()
	}
	if cfg.MaxDelay < cfg.QuietWindow {
		cfg.MaxDelay = cfg.QuietWindow
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve courses directory").
			WithContext("path", root).Build()
	}
	return &CourseWatcher{
		root:     abs,
		cfg:      cfg,
		onChange: onChange,
		logger:   slog.Default(),
		ready:    make(chan struct{}),
	}, nil
}

// WithLogger sets the logger.
func (w *CourseWatcher) WithLogger(logger *slog.Logger) *CourseWatcher {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Ready is closed once Run has registered its watches.
func (w *CourseWatcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. The change callback runs on the
// watcher goroutine, so changes arriving during a rebuild are collected into
// the next one.
func (w *CourseWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create watcher").Build()
	}
	defer func() { _ = watcher.Close() }()

	if err := w.addDirsRecursive(watcher, w.root); err != nil {
		return err
	}
	close(w.ready)
	w.logger.Info("Watching course exports", logfields.Path(w.root))

	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	defer quietTimer.Stop()
	defer maxTimer.Stop()

	var (
		quietC <-chan time.Time
		maxC   <-chan time.Time
	)
	pending := make(map[string]struct{})

	flush := func() {
		quietTimer.Stop()
		maxTimer.Stop()
		quietC, maxC = nil, nil
		if len(pending) == 0 {
			return
		}
		ids := make([]string, 0, len(pending))
		for id := range pending {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		clear(pending)
		w.logger.Info("Course exports changed", slog.Int("courses", len(ids)))
		w.onChange(ctx, ids)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			id, relevant := w.handleEvent(watcher, ev)
			if !relevant {
				continue
			}
			if len(pending) == 0 {
				maxTimer.Reset(w.cfg.MaxDelay)
				maxC = maxTimer.C
			}
			pending[id] = struct{}{}
			stopTimer(quietTimer)
			quietTimer.Reset(w.cfg.QuietWindow)
			quietC = quietTimer.C
		case <-quietC:
			flush()
		case <-maxC:
			flush()
		}
	}
}

// handleEvent registers new directories and maps a change to its course id.
// Only writes to <root>/<id>/<id>_parsed.json are relevant.
func (w *CourseWatcher) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) (string, bool) {
	if shouldIgnoreEvent(ev.Name) {
		return "", false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(watcher, ev.Name)
			return "", false
		}
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false
	}
	id, ok := courseIDFor(w.root, ev.Name)
	if !ok {
		return "", false
	}
	w.logger.Debug("Course export change detected", logfields.Course(id), logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	return id, true
}

// courseIDFor returns the course id when path is the export file of a course
// directly below root.
func courseIDFor(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] == ".." {
		return "", false
	}
	if parts[1] != course.ParsedFileName(parts[0]) {
		return "", false
	}
	return parts[0], true
}

func (w *CourseWatcher) addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "courses directory not accessible").
			WithContext("path", root).Build()
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				w.logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for hidden files, editor swap files and the
// temp files written during atomic replacement.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "#") {
		return true
	}
	return strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".tmp")
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	stopTimer(t)
	return t
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
