package course

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursebuilder/internal/foundation/errors"
)

const fixtureID = "18-01-calculus-fall-2006"

func strPtr(s string) *string { return &s }

func TestLoadFixture(t *testing.T) {
	c, err := LoadFromDir("testdata", fixtureID)
	require.NoError(t, err)

	require.Equal(t, fixtureID, c.ShortURL)
	require.Equal(t, Text("2006"), c.FromYear)
	require.Equal(t, "Fall 2006", c.Term())
	require.Equal(t, "18.01 / 18.01SC", c.CourseNumber())
	require.Equal(t, "mathematics", c.DepartmentSlug())
	require.Len(t, c.Instructors, 1)
	require.Equal(t, "Prof. David Jerison", c.Instructors[0].DisplayName())
	require.Len(t, c.Pages, 3)
	require.True(t, c.Pages[0].IsCourseHome())
	require.True(t, c.IsPublished())

	media := c.EmbeddedMedia["44444444444444444444444444444444"]
	require.Equal(t, MediaYouTubeStream, media.Kind())
	require.Equal(t, "dQw4w9WgXcQ", media.YouTubeID())
	require.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/default.jpg", media.ThumbnailURL())
	require.Contains(t, media.CaptionsURL(), "review_captions.vtt")
	require.Contains(t, media.TranscriptURL(), "review_transcript.pdf")
	require.Equal(t, "https://archive.org/download/review.mp4", media.ArchiveURL())
}

func TestLoadMissing(t *testing.T) {
	_, err := LoadFromDir(t.TempDir(), "nope")
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, errors.CategoryNotFound, ce.Category())
}

func TestDecodeFlexibleFields(t *testing.T) {
	c, err := Decode([]byte(`{
		"short_url": "x",
		"instructors": "",
		"extra_course_number": [{"sort_as_col": "6.001"}, {"sort_as_col": "6.002"}],
		"sort_as": "2.00"
	}`))
	require.NoError(t, err)
	require.Empty(t, c.Instructors)
	require.Len(t, c.ExtraCourseNumbers, 2)
	require.Equal(t, "2.00 / 6.001", c.CourseNumber())

	c, err = Decode([]byte(`{"short_url": "x", "instructors": null, "extra_course_number": null, "sort_as": "2.00"}`))
	require.NoError(t, err)
	require.Equal(t, "2.00", c.CourseNumber())

	_, err = Decode([]byte(`{"uid": "abc"}`))
	require.Error(t, err, "short_url is required")
}

func TestIsPublished(t *testing.T) {
	tests := []struct {
		published   *string
		unpublished *string
		want        bool
	}{
		{nil, nil, false},
		{strPtr(""), nil, false},
		{strPtr("2010/03/10 0:0:0.000"), nil, true},
		{strPtr("2010/03/10 0:0:0.000"), strPtr(""), true},
		{nil, strPtr("2010/03/10 0:0:0.000"), false},
		{strPtr("2010/03/10 0:0:0.000"), strPtr("2010/03/11 0:0:0.000"), false},
		{strPtr("2010/03/11 0:0:0.000"), strPtr("2010/03/10 0:0:0.000"), true},
	}
	for i, tt := range tests {
		c := &Course{LastPublished: tt.published, LastUnpublished: tt.unpublished}
		if got := c.IsPublished(); got != tt.want {
			t.Fatalf("case %d: IsPublished() = %v, want %v", i, got, tt.want)
		}
	}
}

func TestResourceType(t *testing.T) {
	tests := []struct {
		file File
		want ResourceType
	}{
		{File{Type: FileTypeImage}, ResourceImage},
		{File{Type: FileTypeFile, FileType: "image/png"}, ResourceImage},
		{File{FileType: "video/mp4"}, ResourceVideo},
		{File{FileType: "application/pdf"}, ResourceDocument},
		{File{FileType: "text/plain"}, ResourceDocument},
		{File{FileType: "application/zip"}, ResourceOther},
		{File{}, ResourceOther},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.file.ResourceType(), "file type %q/%q", tt.file.Type, tt.file.FileType)
	}
}

func TestMediaKinds(t *testing.T) {
	mp4 := EmbeddedMedia{Entries: []MediaEntry{{ID: EntryYouTubeMP4, MediaInfo: "abc"}}}
	require.Equal(t, MediaYouTubeMP4, mp4.Kind())
	require.True(t, mp4.IsYouTube())
	require.Equal(t, "https://img.youtube.com/vi/abc/default.jpg", mp4.ThumbnailURL())

	hosted := EmbeddedMedia{Entries: []MediaEntry{{ID: "lecture.srt", TechnicalLocation: "https://x/lecture.srt"}}}
	require.Equal(t, MediaHostedCaptioned, hosted.Kind())
	require.Empty(t, hosted.ThumbnailURL())

	iframe := EmbeddedMedia{Entries: []MediaEntry{{ID: "simplecast", MediaInfo: "<iframe/>"}}}
	require.Equal(t, MediaIframe, iframe.Kind())
	require.False(t, iframe.IsYouTube())
	require.Empty(t, iframe.ThumbnailURL())
}

func TestLegacyPaths(t *testing.T) {
	p := Page{URL: "/courses/mathematics/18-01/exams/index.htm"}
	require.Equal(t, "/courses/mathematics/18-01/exams", p.LegacyPath())
	f := File{ID: "final.pdf"}
	require.Equal(t, "/courses/mathematics/18-01/exams/final.pdf", f.LegacyPath(&p))
	require.Empty(t, f.LegacyPath(nil))
	require.Equal(t, "final", f.BaseName())
}

func TestListAndDiscover(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "courses.json")
	require.NoError(t, os.WriteFile(listPath, []byte(`{"courses": ["a", "b"]}`), 0o600))
	ids, err := LoadList(listPath)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)

	found, err := Discover("testdata")
	require.NoError(t, err)
	require.Equal(t, []string{fixtureID}, found)
}
