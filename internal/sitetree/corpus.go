package sitetree

import (
	"sort"
	"sync"

	"git.home.luguber.info/inful/coursebuilder/internal/course"
)

// Corpus merges the tables of many courses by course id and provides the
// cross-course uid to slug lookup.
type Corpus struct {
	mu     sync.RWMutex
	tables map[string]*Table
	slugs  map[string]string
}

func NewCorpus() *Corpus {
	return &Corpus{
		tables: make(map[string]*Table),
		slugs:  make(map[string]string),
	}
}

// Register records the uids that identify c (the course uid and its course
// home uid) without resolving it.
func (cp *Corpus) Register(c *course.Course) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if c.UID != "" {
		cp.slugs[c.UID] = c.ShortURL
	}
	if home := findHome(c); home != nil {
		cp.slugs[home.UID] = c.ShortURL
	}
}

// Add registers c and stores its resolved table. Integrity errors are
// returned; the course stays registered for cross-course links.
func (cp *Corpus) Add(c *course.Course) (*Table, error) {
	cp.Register(c)
	t, err := Resolve(c)
	if err != nil {
		return nil, err
	}
	cp.mu.Lock()
	cp.tables[c.ShortURL] = t
	cp.mu.Unlock()
	return t, nil
}

// Table returns the table of course id.
func (cp *Corpus) Table(id string) (*Table, bool) {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	t, ok := cp.tables[id]
	return t, ok
}

// CourseIDs returns the ids of resolved courses, sorted.
func (cp *Corpus) CourseIDs() []string {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	ids := make([]string, 0, len(cp.tables))
	for id := range cp.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CrossCourse returns a snapshot of the uid to slug lookup. The snapshot is
// safe to share between concurrent course builds.
func (cp *Corpus) CrossCourse() map[string]string {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	out := make(map[string]string, len(cp.slugs))
	for k, v := range cp.slugs {
		out[k] = v
	}
	return out
}
