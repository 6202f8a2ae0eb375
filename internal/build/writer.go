package build

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatterops"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
	"git.home.luguber.info/inful/coursebuilder/internal/sitetree"
)

// WriteStats counts what the writer did for one course.
type WriteStats struct {
	Written   int
	Unchanged int
}

// Documents is the total number of documents of the course.
func (s WriteStats) Documents() int { return s.Written + s.Unchanged }

// Writer materializes document trees under <root>/<course id>.
type Writer struct {
	root   string
	clean  bool
	logger *slog.Logger
}

func NewWriter(root string, clean bool, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{root: root, clean: clean, logger: logger}
}

// CourseDir returns the output directory of a course.
func (w *Writer) CourseDir(courseID string) string {
	return filepath.Join(w.root, courseID)
}

// WriteCourse writes every document of nodes. A document whose existing file
// has the same content fingerprint is left untouched so that file mtimes and
// downstream caches stay stable.
func (w *Writer) WriteCourse(courseID string, nodes []*sitetree.Node) (WriteStats, error) {
	dir := w.CourseDir(courseID)
	if w.clean {
		if err := os.RemoveAll(dir); err != nil {
			return WriteStats{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to clean course output").
				WithContext("course", courseID).WithContext("path", dir).Build()
		}
	}

	var stats WriteStats
	seen := make(map[string]bool)
	for _, n := range sitetree.Flatten(nodes) {
		target, err := w.target(dir, n.Name)
		if err != nil {
			return stats, err
		}
		if seen[target] {
			return stats, errors.InternalError("duplicate document name").
				WithContext("course", courseID).WithContext("path", n.Name).Build()
		}
		seen[target] = true

		data := []byte(n.Data)
		if unchanged(target, data) {
			stats.Unchanged++
			continue
		}
		if err := writeAtomic(target, data); err != nil {
			return stats, errors.WrapError(err, errors.CategoryFileSystem, "failed to write document").
				WithContext("course", courseID).WithContext("path", target).Build()
		}
		stats.Written++
	}

	w.logger.Debug("Course written",
		logfields.Course(courseID),
		logfields.Path(dir),
		slog.Int("written", stats.Written),
		slog.Int("unchanged", stats.Unchanged))
	return stats, nil
}

// target maps a document name into dir. Course-home resources carry a
// leading "/" and land at the top of dir.
func (w *Writer) target(dir, name string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(name, "/"))
	target := filepath.Join(dir, rel)
	if r, err := filepath.Rel(dir, target); err != nil || r == "." || strings.HasPrefix(r, "..") {
		return "", errors.ValidationError("document name escapes course directory").
			WithContext("path", name).Build()
	}
	return target, nil
}

func unchanged(path string, data []byte) bool {
	// #nosec G304 -- path is inside the configured output directory.
	existing, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if bytes.Equal(existing, data) {
		return true
	}
	old, err := frontmatterops.ContentFingerprint(existing)
	if err != nil {
		return false
	}
	cur, err := frontmatterops.ContentFingerprint(data)
	if err != nil {
		return false
	}
	return old == cur
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
