package sitetree

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
)

// SectionsDir holds every root-level section of a course.
const SectionsDir = "sections"

// IndexName is the document name of a directory page.
const IndexName = "_index"

var forbiddenNames = map[string]bool{
	"index":  true,
	"_index": true,
}

// reserved at the course root so course-home resources cannot shadow the
// sections tree or the scaffold.
var reservedRootNames = map[string]bool{
	SectionsDir: true,
	"search":    true,
}

// Kind tells which collection an entry comes from.
type Kind int

const (
	KindPage Kind = iota
	KindFile
	KindMedia
)

// Entry is the placement of one page, file or media item.
type Entry struct {
	UID  string
	Kind Kind
	// Dir is the directory a page's descendants are placed in. For files and
	// media it equals Path.
	Dir string
	// Path is the document path without extension. Directory pages end in
	// /_index; resources under the course home start with "/".
	Path        string
	IsDirectory bool
	IsRoot      bool
	ParentUID   string

	Page  *course.Page
	File  *course.File
	Media *course.EmbeddedMedia
}

// Table maps uids of one course to their output paths. It is built once by
// Resolve and never mutated afterwards.
type Table struct {
	courseID string
	homeUID  string
	entries  map[string]*Entry
	roots    []string
	children map[string][]string
	files    map[string][]string
	media    map[string][]string
	orphans  []string
}

func (t *Table) CourseID() string { return t.courseID }

// Home returns the uid of the course home page.
func (t *Table) Home() string { return t.homeUID }

// Roots returns root-level section uids in source order.
func (t *Table) Roots() []string { return t.roots }

// Children returns the placed child pages of uid in source order.
func (t *Table) Children(uid string) []string { return t.children[uid] }

// Files returns the placed files of page uid.
func (t *Table) Files(uid string) []string { return t.files[uid] }

// Media returns the placed media items of page uid.
func (t *Table) Media(uid string) []string { return t.media[uid] }

// Orphans lists files and media whose parent page was never placed.
func (t *Table) Orphans() []string { return t.orphans }

// Lookup returns the entry for uid.
func (t *Table) Lookup(uid string) (*Entry, bool) {
	e, ok := t.entries[uid]
	return e, ok
}

// Path returns the document path of uid without extension.
func (t *Table) Path(uid string) (string, bool) {
	e, ok := t.entries[uid]
	if !ok {
		return "", false
	}
	return e.Path, true
}

// DocumentName returns the output file name of uid, or "" if uid is not
// placed.
func (t *Table) DocumentName(uid string) string {
	p, ok := t.Path(uid)
	if !ok {
		return ""
	}
	return p + ".md"
}

func (t *Table) IsDirectory(uid string) bool {
	e, ok := t.entries[uid]
	return ok && e.IsDirectory
}

// Len returns the number of placed entries.
func (t *Table) Len() int { return len(t.entries) }

// Segment turns a short name into a path segment: .html/.htm suffixes are
// dropped and spaces become dashes.
func Segment(shortURL string) string {
	s := strings.TrimSpace(shortURL)
	s = strings.TrimSuffix(s, ".html")
	s = strings.TrimSuffix(s, ".htm")
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}

func shortUID(uid string) string {
	if len(uid) > 8 {
		return uid[:8]
	}
	return uid
}

// namespace hands out unique names per directory.
type namespace map[string]map[string]bool

func (n namespace) claim(dir, name, uid string, reserved map[string]bool) string {
	if name == "" {
		name = uid
	}
	used := n[dir]
	if used == nil {
		used = make(map[string]bool)
		n[dir] = used
	}
	if forbiddenNames[strings.ToLower(name)] || used[name] || reserved[name] {
		name = name + "-" + shortUID(uid)
	}
	base := name
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s-%d", base, i)
	}
	used[name] = true
	return name
}

// arena indexes the course collections by uid once.
type arena struct {
	pages    map[string]*course.Page
	children map[string][]*course.Page
	files    map[string][]*course.File
	media    map[string][]*course.EmbeddedMedia
}

func newArena(c *course.Course) *arena {
	a := &arena{
		pages:    make(map[string]*course.Page, len(c.Pages)),
		children: make(map[string][]*course.Page),
		files:    make(map[string][]*course.File),
		media:    make(map[string][]*course.EmbeddedMedia),
	}
	for i := range c.Pages {
		p := &c.Pages[i]
		if _, dup := a.pages[p.UID]; dup {
			continue
		}
		a.pages[p.UID] = p
		a.children[p.ParentUID] = append(a.children[p.ParentUID], p)
	}
	for i := range c.Files {
		f := &c.Files[i]
		if !f.HasLocation() {
			continue
		}
		a.files[f.ParentUID] = append(a.files[f.ParentUID], f)
	}

	// Media come from a JSON object; order them by short name for stable
	// output.
	mediaUIDs := make([]string, 0, len(c.EmbeddedMedia))
	for uid := range c.EmbeddedMedia {
		mediaUIDs = append(mediaUIDs, uid)
	}
	sort.Slice(mediaUIDs, func(i, j int) bool {
		mi, mj := c.EmbeddedMedia[mediaUIDs[i]], c.EmbeddedMedia[mediaUIDs[j]]
		if mi.ShortURL != mj.ShortURL {
			return mi.ShortURL < mj.ShortURL
		}
		return mediaUIDs[i] < mediaUIDs[j]
	})
	for _, key := range mediaUIDs {
		m := c.EmbeddedMedia[key]
		if m.UID == "" {
			m.UID = key
		}
		a.media[m.ParentUID] = append(a.media[m.ParentUID], &m)
	}
	return a
}

// Resolve computes the uid to path table of a course.
//
// Pages are placed breadth first so parents are always placed before their
// children. A page whose parent does not exist, a parent cycle, and a missing
// course home page are integrity errors naming the offending uid.
func Resolve(c *course.Course) (*Table, error) {
	a := newArena(c)

	home := findHome(c)
	if home == nil {
		return nil, errors.IntegrityError("course home page not found").
			WithContext("course", c.ShortURL).
			WithContext("uid", c.UID).Build()
	}

	isRootParent := func(parent string) bool {
		return parent == "" || parent == c.UID || parent == home.UID
	}

	for i := range c.Pages {
		p := &c.Pages[i]
		if isRootParent(p.ParentUID) {
			continue
		}
		if _, ok := a.pages[p.ParentUID]; !ok {
			return nil, errors.IntegrityError("page parent not found").
				WithContext("course", c.ShortURL).
				WithContext("uid", p.UID).
				WithContext("parent_uid", p.ParentUID).Build()
		}
	}

	t := &Table{
		courseID: c.ShortURL,
		homeUID:  home.UID,
		entries:  make(map[string]*Entry),
		children: make(map[string][]string),
		files:    make(map[string][]string),
		media:    make(map[string][]string),
	}
	t.entries[home.UID] = &Entry{
		UID:         home.UID,
		Kind:        KindPage,
		Path:        IndexName,
		IsDirectory: true,
		Page:        home,
	}

	names := namespace{}
	var queue []*Entry
	excluded := map[string]bool{}

	var rootCandidates []*course.Page
	rootCandidates = append(rootCandidates, a.children[""]...)
	if c.UID != "" {
		rootCandidates = append(rootCandidates, a.children[c.UID]...)
	}
	rootCandidates = append(rootCandidates, a.children[home.UID]...)
	sortBySourceOrder(c, rootCandidates)

	for _, p := range rootCandidates {
		if p.UID == home.UID {
			continue
		}
		if p.IsExcluded() || p.IsCourseHome() {
			excluded[p.UID] = true
			continue
		}
		seg := names.claim(SectionsDir, Segment(p.ShortURL), p.UID, nil)
		e := &Entry{UID: p.UID, Kind: KindPage, Dir: path.Join(SectionsDir, seg), IsRoot: true, ParentUID: p.ParentUID, Page: p}
		t.entries[p.UID] = e
		t.roots = append(t.roots, p.UID)
		queue = append(queue, e)
	}

	placeResources(t, a, names, home.UID, "", reservedRootNames)

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]

		for _, child := range a.children[e.UID] {
			if child.IsExcluded() {
				excluded[child.UID] = true
				continue
			}
			if _, placed := t.entries[child.UID]; placed {
				continue
			}
			seg := names.claim(e.Dir, Segment(child.ShortURL), child.UID, nil)
			ce := &Entry{UID: child.UID, Kind: KindPage, Dir: path.Join(e.Dir, seg), ParentUID: e.UID, Page: child}
			t.entries[child.UID] = ce
			t.children[e.UID] = append(t.children[e.UID], child.UID)
			queue = append(queue, ce)
		}
		placeResources(t, a, names, e.UID, e.Dir, nil)

		e.IsDirectory = len(t.children[e.UID])+len(t.files[e.UID])+len(t.media[e.UID]) > 0
		if e.IsDirectory {
			e.Path = path.Join(e.Dir, IndexName)
		} else {
			e.Path = e.Dir
		}
	}

	if err := checkUnplaced(c, a, t, excluded, isRootParent); err != nil {
		return nil, err
	}

	orphaned := func(parent string) bool {
		_, placed := t.entries[parent]
		return !placed && !excludedOrBelow(parent, a, excluded)
	}
	for parent, fs := range a.files {
		if !orphaned(parent) {
			continue
		}
		for _, f := range fs {
			t.orphans = append(t.orphans, f.UID)
		}
	}
	for parent, ms := range a.media {
		if !orphaned(parent) {
			continue
		}
		for _, m := range ms {
			t.orphans = append(t.orphans, m.UID)
		}
	}
	sort.Strings(t.orphans)

	return t, nil
}

func findHome(c *course.Course) *course.Page {
	var fallback *course.Page
	for i := range c.Pages {
		p := &c.Pages[i]
		if !p.IsCourseHome() {
			continue
		}
		if p.ParentUID == c.UID {
			return p
		}
		if fallback == nil && (p.ParentUID == "" || c.UID == "") {
			fallback = p
		}
	}
	return fallback
}

// placeResources places the files and media of page uid inside dir. Files
// directly under the course home are rooted at "/".
func placeResources(t *Table, a *arena, names namespace, uid, dir string, reserved map[string]bool) {
	for _, f := range a.files[uid] {
		if _, placed := t.entries[f.UID]; placed {
			continue
		}
		name := names.claim(dir, Segment(f.BaseName()), f.UID, reserved)
		p := path.Join(dir, name)
		if dir == "" {
			p = "/" + name
		}
		t.entries[f.UID] = &Entry{UID: f.UID, Kind: KindFile, Dir: p, Path: p, ParentUID: uid, File: f}
		t.files[uid] = append(t.files[uid], f.UID)
	}
	for _, m := range a.media[uid] {
		if _, placed := t.entries[m.UID]; placed {
			continue
		}
		name := names.claim(dir, Segment(m.ShortURL), m.UID, reserved)
		p := path.Join(dir, name)
		if dir == "" {
			p = "/" + name
		}
		t.entries[m.UID] = &Entry{UID: m.UID, Kind: KindMedia, Dir: p, Path: p, ParentUID: uid, Media: m}
		t.media[uid] = append(t.media[uid], m.UID)
	}
}

// checkUnplaced reports pages that were neither placed nor excluded. Since
// every parent exists, such a page hangs below a parent cycle.
func checkUnplaced(c *course.Course, a *arena, t *Table, excluded map[string]bool, isRootParent func(string) bool) error {
	for i := range c.Pages {
		p := &c.Pages[i]
		if _, placed := t.entries[p.UID]; placed || p.UID == t.homeUID {
			continue
		}
		if excludedOrBelow(p.UID, a, excluded) {
			continue
		}
		if uid, ok := findCycle(p.UID, a, isRootParent); ok {
			return errors.IntegrityError("page parent cycle").
				WithContext("course", c.ShortURL).
				WithContext("uid", uid).Build()
		}
		return errors.IntegrityError("page not reachable from course root").
			WithContext("course", c.ShortURL).
			WithContext("uid", p.UID).Build()
	}
	return nil
}

// excludedOrBelow reports whether uid or one of its ancestors is excluded.
// The walk is bounded by the number of pages.
func excludedOrBelow(uid string, a *arena, excluded map[string]bool) bool {
	for steps := 0; steps <= len(a.pages); steps++ {
		if excluded[uid] {
			return true
		}
		p, ok := a.pages[uid]
		if !ok {
			return false
		}
		uid = p.ParentUID
	}
	return false
}

// findCycle follows parent links from uid and returns a uid on the cycle.
func findCycle(uid string, a *arena, isRootParent func(string) bool) (string, bool) {
	seen := map[string]bool{}
	for {
		if isRootParent(uid) {
			return "", false
		}
		if seen[uid] {
			return uid, true
		}
		seen[uid] = true
		p, ok := a.pages[uid]
		if !ok {
			return "", false
		}
		uid = p.ParentUID
	}
}

func sortBySourceOrder(c *course.Course, pages []*course.Page) {
	order := make(map[string]int, len(c.Pages))
	for i := range c.Pages {
		if _, ok := order[c.Pages[i].UID]; !ok {
			order[c.Pages[i].UID] = i
		}
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return order[pages[i].UID] < order[pages[j].UID]
	})
}
