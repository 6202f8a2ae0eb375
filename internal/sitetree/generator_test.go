package sitetree

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatterops"
	"git.home.luguber.info/inful/coursebuilder/internal/links"
)

func TestGenerate_EndToEnd(t *testing.T) {
	nodes, err := Generate(e2eCourse(), Options{})
	require.NoError(t, err)

	require.Equal(t, []string{
		"_index.md",
		"sections/lectures/_index.md",
		"sections/lectures/lecture-notes.md",
		"sections/lectures/videos/_index.md",
		"sections/lectures/videos/slides.md",
		"sections/lectures/videos/lecture-1.md",
		"sections/lectures/videos/lecture-2.md",
	}, Names(nodes))

	section := findNode(t, nodes, "sections/lectures/_index.md")
	require.True(t, section.IsDirectory())
	require.Len(t, section.Children, 2)

	leaf := findNode(t, nodes, "sections/lectures/lecture-notes.md")
	require.False(t, leaf.IsDirectory())
	fields, body := parseNode(t, leaf)
	require.Equal(t, frontmatterops.CanonicalUID(sectionUID), fields["parent_uid"])
	require.Equal(t, "Lectures", fields["parent_title"])
	require.Contains(t, body, `{{% getpage "courses/`+testCourseID+`/sections/lectures/videos/_index" %}}`)
	require.NotContains(t, body, links.PlaceholderStart)

	gallery := findNode(t, nodes, "sections/lectures/videos/_index.md")
	fields, body = parseNode(t, gallery)
	require.Equal(t, frontmatterops.CanonicalUID(galleryUID), fields["uid"])
	require.Equal(t, []any{
		frontmatterops.CanonicalUID(media1UID),
		frontmatterops.CanonicalUID(media2UID),
	}, fields["videos"])
	require.Equal(t, 2, strings.Count(body, "{{< video-gallery-item "))
	require.Contains(t, body, `href="sections/lectures/videos/lecture-1"`)
	require.Contains(t, body, "https://img.youtube.com/vi/yt1/default.jpg")

	video := findNode(t, nodes, "sections/lectures/videos/lecture-1.md")
	fields, _ = parseNode(t, video)
	require.Equal(t, frontmatterops.LayoutResource, fields["layout"])
	require.Equal(t, frontmatterops.CanonicalUID(galleryUID), fields["parent_uid"])
	require.Equal(t, frontmatterops.CanonicalUID(media1UID), fields["uid"])
	meta, ok := fields["video_metadata"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "yt1", meta["youtube_id"])
}

func TestGenerate_Idempotent(t *testing.T) {
	first, err := Generate(e2eCourse(), Options{})
	require.NoError(t, err)
	second, err := Generate(e2eCourse(), Options{})
	require.NoError(t, err)

	a, b := Flatten(first), Flatten(second)
	require.Len(t, b, len(a))
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Data != b[i].Data {
			t.Fatalf("document %d differs between runs: %s vs %s", i, a[i].Name, b[i].Name)
		}
	}
}

func TestGenerate_RootMenuWeights(t *testing.T) {
	c := e2eCourse()
	c.Pages = append(c.Pages, course.Page{UID: "70000000000000000000000000000000", ParentUID: courseUID, ShortURL: "syllabus", Title: "Syllabus"})

	nodes, err := Generate(c, Options{})
	require.NoError(t, err)

	for name, want := range map[string]int{
		"sections/lectures/_index.md": 10,
		"sections/syllabus.md":        20,
	} {
		fields, _ := parseNode(t, findNode(t, nodes, name))
		menu, ok := fields["menu"].(map[string]any)
		require.True(t, ok, "%s has no menu", name)
		entry := menu[testCourseID].(map[string]any)
		require.Equal(t, want, entry["weight"], name)
		_, hasParent := entry["parent"]
		require.False(t, hasParent)
	}

	home, _ := parseNode(t, findNode(t, nodes, "_index.md"))
	require.Equal(t, frontmatterops.LayoutCourseHome, home["layout"])
}

func TestGenerate_LeftNavChildGetsMenuParent(t *testing.T) {
	c := e2eCourse()
	c.Pages[2].ListInLeftNav = true

	nodes, err := Generate(c, Options{})
	require.NoError(t, err)
	fields, _ := parseNode(t, findNode(t, nodes, "sections/lectures/lecture-notes.md"))
	entry := fields["menu"].(map[string]any)[testCourseID].(map[string]any)
	require.Equal(t, sectionUID, entry["parent"])
	require.Equal(t, 10, entry["weight"])
}

func TestGenerate_InstructorInsightsLayout(t *testing.T) {
	c := e2eCourse()
	c.Pages[1].Type = course.TypeInstructorInsights

	nodes, err := Generate(c, Options{})
	require.NoError(t, err)

	// Every descendant takes the layout, resources included.
	for _, name := range []string{
		"sections/lectures/_index.md",
		"sections/lectures/lecture-notes.md",
		"sections/lectures/videos/_index.md",
		"sections/lectures/videos/slides.md",
		"sections/lectures/videos/lecture-1.md",
	} {
		fields, _ := parseNode(t, findNode(t, nodes, name))
		require.Equal(t, frontmatterops.LayoutInstructorInsights, fields["layout"], name)
	}
}

func TestGenerate_InstructorInsightsLayoutStaysInSubtree(t *testing.T) {
	c := e2eCourse()
	c.Pages[1].Type = course.TypeInstructorInsights
	c.Pages = append(c.Pages, course.Page{UID: "70000000000000000000000000000000", ParentUID: courseUID, ShortURL: "syllabus", Title: "Syllabus"})

	nodes, err := Generate(c, Options{})
	require.NoError(t, err)
	fields, _ := parseNode(t, findNode(t, nodes, "sections/syllabus.md"))
	require.NotEqual(t, frontmatterops.LayoutInstructorInsights, fields["layout"])
}

func TestGenerate_CourseHomePDF(t *testing.T) {
	c := e2eCourse()
	c.Files = append(c.Files, course.File{
		UID: "d7d1fabcb57a6d4a9cc96f04348dedfd", ParentUID: homeUID, ID: "acknowledgements.pdf",
		Title: "Acknowledgements", FileType: "application/pdf", FileLocation: storage + "acknowledgements.pdf",
	})

	nodes, err := Generate(c, Options{Links: links.Options{StripStorage: true, StaticPrefix: "/coursemedia"}})
	require.NoError(t, err)
	require.Equal(t, "/acknowledgements.md", nodes[1].Name)

	fields, _ := parseNode(t, nodes[1])
	require.Equal(t, frontmatterops.LayoutPDF, fields["layout"])
	require.Equal(t, frontmatterops.TypeCourse, fields["type"])
	require.Equal(t, "/coursemedia/"+testCourseID+"/acknowledgements.pdf", fields["file"])
	_, hasParent := fields["parent_uid"]
	require.False(t, hasParent)
}

func TestGenerate_ImageGallery(t *testing.T) {
	c := e2eCourse()
	c.Pages[3].IsImageGallery = true
	c.Files = append(c.Files,
		course.File{UID: "60000000000000000000000000000001", ParentUID: galleryUID, ID: "board.jpg", Type: course.FileTypeImage,
			FileType: "image/jpeg", FileLocation: storage + "board.jpg", Caption: "The board", Credit: "Staff"},
		course.File{UID: "60000000000000000000000000000002", ParentUID: galleryUID, ID: "desk.jpg", Type: course.FileTypeImage,
			FileType: "image/jpeg", FileLocation: storage + "desk.jpg"},
	)

	nodes, err := Generate(c, Options{})
	require.NoError(t, err)
	_, body := parseNode(t, findNode(t, nodes, "sections/lectures/videos/_index.md"))
	require.Equal(t, 1, strings.Count(body, "{{< image-gallery id="))
	require.Equal(t, 2, strings.Count(body, "{{< image-gallery-item "))
	require.Equal(t, 2, strings.Count(body, "{{< video-gallery-item "))
	require.Contains(t, body, `data-ngdesc="The board"`)

	img, _ := parseNode(t, findNode(t, nodes, "sections/lectures/videos/board.md"))
	meta := img["image_metadata"].(map[string]any)
	require.Equal(t, "The board", meta["caption"])
	require.Equal(t, "", meta["image-alt"])
}

func TestGenerate_StorageStripping(t *testing.T) {
	c := e2eCourse()
	c.Pages[2].Text = `<p><img src="` + storage + `figure.png" alt="fig"></p>`

	nodes, err := Generate(c, Options{Links: links.Options{StripStorage: true, StaticPrefix: "/coursemedia"}})
	require.NoError(t, err)
	_, body := parseNode(t, findNode(t, nodes, "sections/lectures/lecture-notes.md"))
	require.Contains(t, body, "/coursemedia/"+testCourseID+"/figure.png")
	require.NotContains(t, body, "amazonaws.com")
}

func TestGenerate_CrossCourseLink(t *testing.T) {
	c := e2eCourse()
	c.Pages[2].Text = `<a href="../resolveuid/99999999999999999999999999999999">calculus</a>`

	nodes, err := Generate(c, Options{CrossCourse: map[string]string{"99999999999999999999999999999999": "18-01-calculus"}})
	require.NoError(t, err)
	_, body := parseNode(t, findNode(t, nodes, "sections/lectures/lecture-notes.md"))
	require.Contains(t, body, "(/courses/18-01-calculus)")
}

type failingConverter struct{}

func (failingConverter) Convert(string) (string, error) {
	return "", errors.New("converter exploded")
}

func TestGenerate_ConverterFallback(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	nodes, err := Generate(e2eCourse(), Options{Converter: failingConverter{}, Logger: logger})
	require.NoError(t, err)
	_, body := parseNode(t, findNode(t, nodes, "sections/lectures/lecture-notes.md"))
	require.Contains(t, body, "<p>See the <a href=")
	require.Contains(t, body, `{{% getpage "courses/`+testCourseID+`/sections/lectures/videos/_index" %}}`)
	require.Contains(t, logs.String(), "Text conversion failed")
}

func TestGenerate_MarkerInProse(t *testing.T) {
	c := e2eCourse()
	c.Pages[2].Text = `<p>The recordings are under ./resolveuid/` + galleryUID + ` for now.</p>`

	nodes, err := Generate(c, Options{})
	require.NoError(t, err)
	_, body := parseNode(t, findNode(t, nodes, "sections/lectures/lecture-notes.md"))
	require.Contains(t, body, `{{% getpage "courses/`+testCourseID+`/sections/lectures/videos/_index" %}}`)
	require.NotContains(t, body, `\_index`)
}

func TestGenerate_PageRelativeLink(t *testing.T) {
	c := e2eCourse()
	c.Pages[3].Text = `<p>Download the <a href="slides.pdf">slides</a> or <A HREF="./slides.pdf">again</A>.</p>`

	nodes, err := Generate(c, Options{})
	require.NoError(t, err)
	_, body := parseNode(t, findNode(t, nodes, "sections/lectures/videos/_index.md"))
	want := `{{% getpage "courses/` + testCourseID + `/sections/lectures/videos/slides" %}}`
	if n := strings.Count(body, want); n != 2 {
		t.Fatalf("expected two resolved links, got %d in %q", n, body)
	}
}

func TestGenerate_UnknownMarkerKept(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	c := e2eCourse()
	c.Pages[2].Text = `<a href="./resolveuid/abababababababababababababababab">gone</a>`
	nodes, err := Generate(c, Options{Logger: logger})
	require.NoError(t, err)
	_, body := parseNode(t, findNode(t, nodes, "sections/lectures/lecture-notes.md"))
	require.Contains(t, body, "resolveuid/abababababababababababababababab")
	require.Contains(t, logs.String(), "Unresolved uid link")
}

func TestBuild_AddsScaffold(t *testing.T) {
	c := e2eCourse()
	table, err := Resolve(c)
	require.NoError(t, err)

	nodes, err := NewGenerator(c, table, Options{}).Build()
	require.NoError(t, err)
	require.Len(t, Flatten(nodes), 9)

	search, _ := parseNode(t, findNode(t, nodes, "search/_index.md"))
	require.Equal(t, frontmatterops.LayoutSearch, search["layout"])
	index, _ := parseNode(t, findNode(t, nodes, "sections/_index.md"))
	require.Equal(t, frontmatterops.LayoutCourseIndex, index["layout"])
	require.Equal(t, testCourseID, index["course_id"])
}
