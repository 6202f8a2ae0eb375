package sitetree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/frontmatter"
)

const (
	testCourseID = "6-034-artificial-intelligence-fall-2010"

	courseUID  = "00000000000000000000000000000001"
	homeUID    = "00000000000000000000000000000002"
	sectionUID = "10000000000000000000000000000000"
	leafUID    = "20000000000000000000000000000000"
	galleryUID = "30000000000000000000000000000000"
	media1UID  = "40000000000000000000000000000001"
	media2UID  = "40000000000000000000000000000002"
	fileUID    = "50000000000000000000000000000001"
	noLocUID   = "50000000000000000000000000000002"
)

const storage = "https://open-learning-course-data.s3.amazonaws.com/" + testCourseID + "/"

// e2eCourse is a three level graph: course -> section -> {leaf, media gallery}
// where the gallery holds two media items, one file with a location and one
// without.
func e2eCourse() *course.Course {
	return &course.Course{
		UID:      courseUID,
		ShortURL: testCourseID,
		Title:    "Artificial Intelligence",
		URL:      "/courses/electrical-engineering-and-computer-science/" + testCourseID,
		SortAs:   "6.034",
		Pages: []course.Page{
			{UID: homeUID, ParentUID: courseUID, ShortURL: "index.htm", Type: course.TypeCourseHome, Text: "<p>Welcome to 6.034.</p>"},
			{UID: sectionUID, ParentUID: courseUID, ShortURL: "lectures", Title: "Lectures", Type: "CourseSection",
				URL: "/courses/electrical-engineering-and-computer-science/" + testCourseID + "/lectures", ListInLeftNav: true},
			{UID: leafUID, ParentUID: sectionUID, ShortURL: "lecture-notes.html", Title: "Lecture Notes",
				Text: `<p>See the <a href="./resolveuid/` + galleryUID + `">videos</a>.</p>`},
			{UID: galleryUID, ParentUID: sectionUID, ShortURL: "videos", Title: "Videos", Type: "CourseSection",
				URL: "/courses/electrical-engineering-and-computer-science/" + testCourseID + "/lectures/videos", IsMediaGallery: true},
		},
		Files: []course.File{
			{UID: fileUID, ParentUID: galleryUID, ID: "slides.pdf", Title: "Slides", FileType: "application/pdf", FileLocation: storage + "slides.pdf"},
			{UID: noLocUID, ParentUID: galleryUID, ID: "draft.pdf", Title: "Draft", FileType: "application/pdf"},
		},
		EmbeddedMedia: map[string]course.EmbeddedMedia{
			media1UID: {UID: media1UID, ParentUID: galleryUID, ShortURL: "lecture-1", Title: "Lecture 1",
				Entries: []course.MediaEntry{{ID: course.EntryYouTubeStream, MediaInfo: "yt1"}}},
			media2UID: {UID: media2UID, ParentUID: galleryUID, ShortURL: "lecture-2", Title: "Lecture 2",
				Entries: []course.MediaEntry{{ID: course.EntryYouTubeStream, MediaInfo: "yt2"}}},
		},
	}
}

func findNode(t *testing.T, nodes []*Node, name string) *Node {
	t.Helper()
	for _, n := range Flatten(nodes) {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("document %q not found in %v", name, Names(nodes))
	return nil
}

func parseNode(t *testing.T, n *Node) (map[string]any, string) {
	t.Helper()
	fields, body, err := frontmatter.ParseDocument([]byte(n.Data))
	require.NoError(t, err)
	return fields, string(body)
}
