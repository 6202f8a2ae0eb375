package sitetree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
)

func requireIntegrityError(t *testing.T, err error, uid string) {
	t.Helper()
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok, "expected classified error, got %v", err)
	require.Equal(t, errors.CategoryIntegrity, ce.Category())
	if uid != "" {
		got, _ := ce.Context().GetString("uid")
		require.Equal(t, uid, got)
	}
}

func TestResolve_PathStability(t *testing.T) {
	c := e2eCourse()
	table, err := Resolve(c)
	require.NoError(t, err)

	for _, p := range c.Pages {
		e, ok := table.Lookup(p.UID)
		require.True(t, ok, "page %s not placed", p.UID)
		hasChildren := len(table.Children(p.UID))+len(table.Files(p.UID))+len(table.Media(p.UID)) > 0
		if p.UID == homeUID {
			continue
		}
		require.Equal(t, hasChildren, e.IsDirectory, "page %s", p.UID)
		if hasChildren {
			require.Regexp(t, `/_index$`, e.Path)
		} else {
			require.NotContains(t, e.Path, "_index")
		}
	}

	path, _ := table.Path(sectionUID)
	require.Equal(t, "sections/lectures/_index", path)
	path, _ = table.Path(leafUID)
	require.Equal(t, "sections/lectures/lecture-notes", path)
	require.Equal(t, "sections/lectures/videos/_index.md", table.DocumentName(galleryUID))
	require.Equal(t, "sections/lectures/videos/slides.md", table.DocumentName(fileUID))
	require.Equal(t, "sections/lectures/videos/lecture-1.md", table.DocumentName(media1UID))
	require.Equal(t, "", table.DocumentName(noLocUID), "files without location are not placed")
	require.Equal(t, "_index.md", table.DocumentName(homeUID))
	require.Equal(t, []string{sectionUID}, table.Roots())
}

func TestResolve_ParentCycle(t *testing.T) {
	c := e2eCourse()
	c.Pages = append(c.Pages,
		course.Page{UID: "a0000000000000000000000000000000", ParentUID: "b0000000000000000000000000000000", ShortURL: "a"},
		course.Page{UID: "b0000000000000000000000000000000", ParentUID: "a0000000000000000000000000000000", ShortURL: "b"},
		course.Page{UID: "c0000000000000000000000000000000", ParentUID: "a0000000000000000000000000000000", ShortURL: "c"},
	)

	_, err := Resolve(c)
	requireIntegrityError(t, err, "")
	ce, _ := errors.AsClassified(err)
	uid, _ := ce.Context().GetString("uid")
	require.Contains(t, []string{"a0000000000000000000000000000000", "b0000000000000000000000000000000"}, uid)

	_, err = Generate(c, Options{})
	requireIntegrityError(t, err, "")
}

func TestResolve_SelfParent(t *testing.T) {
	c := e2eCourse()
	c.Pages = append(c.Pages, course.Page{UID: "d0000000000000000000000000000000", ParentUID: "d0000000000000000000000000000000", ShortURL: "self"})
	_, err := Resolve(c)
	requireIntegrityError(t, err, "d0000000000000000000000000000000")
}

func TestResolve_DanglingParent(t *testing.T) {
	c := e2eCourse()
	c.Pages = append(c.Pages, course.Page{UID: "e0000000000000000000000000000000", ParentUID: "ffffffffffffffffffffffffffffffff", ShortURL: "lost"})
	_, err := Resolve(c)
	requireIntegrityError(t, err, "e0000000000000000000000000000000")
}

func TestResolve_MissingCourseHome(t *testing.T) {
	c := e2eCourse()
	c.Pages = c.Pages[1:]
	_, err := Resolve(c)
	requireIntegrityError(t, err, courseUID)
}

func TestResolve_ForbiddenAndCollidingNames(t *testing.T) {
	c := e2eCourse()
	c.Pages = append(c.Pages,
		course.Page{UID: "f1000000000000000000000000000000", ParentUID: courseUID, ShortURL: "index.htm", Title: "Index"},
		course.Page{UID: "f2000000000000000000000000000000", ParentUID: courseUID, ShortURL: "lectures.html", Title: "Dup"},
		course.Page{UID: "f3000000000000000000000000000000", ParentUID: homeUID, ShortURL: "study materials", Title: "Study"},
	)
	table, err := Resolve(c)
	require.NoError(t, err)

	p, _ := table.Path("f1000000000000000000000000000000")
	require.Equal(t, "sections/index-f1000000", p)
	p, _ = table.Path("f2000000000000000000000000000000")
	require.Equal(t, "sections/lectures-f2000000", p)
	p, _ = table.Path("f3000000000000000000000000000000")
	require.Equal(t, "sections/study-materials", p)
	require.Len(t, table.Roots(), 4)
}

func TestResolve_ExcludedSubtree(t *testing.T) {
	c := e2eCourse()
	c.Pages = append(c.Pages,
		course.Page{UID: "e1000000000000000000000000000000", ParentUID: courseUID, ShortURL: "download", Type: course.TypeDownloadSection},
		course.Page{UID: "e2000000000000000000000000000000", ParentUID: "e1000000000000000000000000000000", ShortURL: "zip"},
		course.Page{UID: "e3000000000000000000000000000000", ParentUID: courseUID, ShortURL: "sr", Type: course.TypeSRHomePage},
	)
	c.Files = append(c.Files, course.File{UID: "e4000000000000000000000000000000", ParentUID: "e2000000000000000000000000000000", ID: "all.zip", FileLocation: storage + "all.zip"})

	table, err := Resolve(c)
	require.NoError(t, err)
	for _, uid := range []string{"e1000000000000000000000000000000", "e2000000000000000000000000000000", "e3000000000000000000000000000000", "e4000000000000000000000000000000"} {
		_, ok := table.Lookup(uid)
		require.False(t, ok, "uid %s should not be placed", uid)
	}
	require.Empty(t, table.Orphans())
}

func TestResolve_CourseHomeResourcesAtRoot(t *testing.T) {
	c := e2eCourse()
	c.Files = append(c.Files,
		course.File{UID: "d7d1fabcb57a6d4a9cc96f04348dedfd", ParentUID: homeUID, ID: "acknowledgements.pdf", FileType: "application/pdf", FileLocation: storage + "ack.pdf"},
		course.File{UID: "d8d1fabcb57a6d4a9cc96f04348dedfd", ParentUID: homeUID, ID: "sections.pdf", FileType: "application/pdf", FileLocation: storage + "s.pdf"},
	)
	table, err := Resolve(c)
	require.NoError(t, err)
	require.Equal(t, "/acknowledgements.md", table.DocumentName("d7d1fabcb57a6d4a9cc96f04348dedfd"))
	require.Equal(t, "/sections-d8d1fabc.md", table.DocumentName("d8d1fabcb57a6d4a9cc96f04348dedfd"))
}

func TestResolve_OrphanResources(t *testing.T) {
	c := e2eCourse()
	c.Files = append(c.Files, course.File{UID: "o1000000000000000000000000000000", ParentUID: "nowhere", ID: "x.pdf", FileLocation: storage + "x.pdf"})
	table, err := Resolve(c)
	require.NoError(t, err)
	require.Equal(t, []string{"o1000000000000000000000000000000"}, table.Orphans())
}

func TestSegment(t *testing.T) {
	require.Equal(t, "syllabus", Segment("syllabus.htm"))
	require.Equal(t, "syllabus", Segment("syllabus.html"))
	require.Equal(t, "study-materials", Segment(" study materials "))
	require.Equal(t, "a-b", Segment("a/b"))
}

func TestCorpus(t *testing.T) {
	cp := NewCorpus()
	other := e2eCourse()
	other.ShortURL = "18-01-calculus"
	other.UID = "99999999999999999999999999999999"
	other.Pages[0].ParentUID = other.UID
	other.Pages[1].ParentUID = other.UID

	_, err := cp.Add(other)
	require.NoError(t, err)
	_, err = cp.Add(e2eCourse())
	require.NoError(t, err)

	lookup := cp.CrossCourse()
	require.Equal(t, "18-01-calculus", lookup["99999999999999999999999999999999"])
	require.Equal(t, testCourseID, lookup[courseUID])
	require.Equal(t, []string{"18-01-calculus", testCourseID}, cp.CourseIDs())

	broken := e2eCourse()
	broken.ShortURL = "broken"
	broken.UID = "88888888888888888888888888888888"
	broken.Pages = broken.Pages[1:]
	_, err = cp.Add(broken)
	require.Error(t, err)
	require.Equal(t, "broken", cp.CrossCourse()[broken.UID], "failed courses stay linkable")
	_, ok := cp.Table("broken")
	require.False(t, ok)
}
