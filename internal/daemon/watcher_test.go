package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCourseIDFor(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "data", "courses")
	cases := []struct {
		name string
		path string
		id   string
		ok   bool
	}{
		{"export", filepath.Join(root, "6-034", "6-034_parsed.json"), "6-034", true},
		{"other file", filepath.Join(root, "6-034", "notes.pdf"), "", false},
		{"mismatched id", filepath.Join(root, "6-034", "18-01_parsed.json"), "", false},
		{"nested", filepath.Join(root, "6-034", "static", "6-034_parsed.json"), "", false},
		{"outside", filepath.Join(root, "..", "x", "x_parsed.json"), "", false},
		{"root file", filepath.Join(root, "courses.json"), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := courseIDFor(root, tc.path)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.id, id)
		})
	}
}

func TestShouldIgnoreEvent(t *testing.T) {
	require.True(t, shouldIgnoreEvent("/c/a/.a_parsed.json.part-123"))
	require.True(t, shouldIgnoreEvent("/c/a/a_parsed.json~"))
	require.True(t, shouldIgnoreEvent("/c/a/a_parsed.json.swp"))
	require.False(t, shouldIgnoreEvent("/c/a/a_parsed.json"))
}

func TestNewCourseWatcher_Validation(t *testing.T) {
	_, err := NewCourseWatcher(t.TempDir(), DefaultWatcherConfig, nil)
	require.Error(t, err)

	_, err = NewCourseWatcher(t.TempDir(), WatcherConfig{}, func(context.Context, []string) {})
	require.Error(t, err)
}

type changeRecorder struct {
	mu    sync.Mutex
	calls [][]string
	ch    chan struct{}
}

func newChangeRecorder() *changeRecorder {
	return &changeRecorder{ch: make(chan struct{}, 8)}
}

func (r *changeRecorder) record(_ context.Context, ids []string) {
	r.mu.Lock()
	r.calls = append(r.calls, ids)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *changeRecorder) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func startWatcher(t *testing.T, root string, rec *changeRecorder) {
	t.Helper()
	w, err := NewCourseWatcher(root, WatcherConfig{QuietWindow: 50 * time.Millisecond, MaxDelay: time.Second}, rec.record)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher not ready")
	}
}

func TestCourseWatcher_CoalescesChanges(t *testing.T) {
	root := t.TempDir()
	for _, id := range []string{"a", "b"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, id), 0o750))
	}
	rec := newChangeRecorder()
	startWatcher(t, root, rec)

	for _, id := range []string{"b", "a", "b"} {
		path := filepath.Join(root, id, id+"_parsed.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	}
	// A non-export file must not add anything.
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "slides.pdf"), []byte("x"), 0o600))

	require.Equal(t, []string{"a", "b"}, rec.wait(t))
}

func TestCourseWatcher_PicksUpNewCourseDirectory(t *testing.T) {
	root := t.TempDir()
	rec := newChangeRecorder()
	startWatcher(t, root, rec)

	dir := filepath.Join(root, "new-course")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new-course_parsed.json"), []byte(`{}`), 0o600))

	require.Equal(t, []string{"new-course"}, rec.wait(t))
}

func TestCourseWatcher_MissingRoot(t *testing.T) {
	w, err := NewCourseWatcher(filepath.Join(t.TempDir(), "missing"), DefaultWatcherConfig, func(context.Context, []string) {})
	require.NoError(t, err)
	if err := w.Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing courses directory")
	}
}
