package course

import (
	"strings"
	"time"
)

// Page types with special handling.
const (
	TypeCourseHome         = "CourseHomeSection"
	TypeInstructorInsights = "ThisCourseAtMITSection"
	TypeSRHomePage         = "SRHomePage"
	TypeDownloadSection    = "DownloadSection"
)

// publishedLayout is the timestamp format of the publish/unpublish fields.
const publishedLayout = "2006/1/2 15:4:5.000"

// Course is the root of one course graph.
type Course struct {
	UID                string                   `json:"uid"`
	ShortURL           string                   `json:"short_url"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	URL                string                   `json:"url"`
	FromSemester       Text                     `json:"from_semester"`
	FromYear           Text                     `json:"from_year"`
	CourseLevel        Text                     `json:"course_level"`
	SortAs             Text                     `json:"sort_as"`
	ExtraCourseNumbers ExtraCourseNumbers       `json:"extra_course_number"`
	Instructors        Instructors              `json:"instructors"`
	Collections        []Collection             `json:"course_collections"`
	ImageSrc           string                   `json:"image_src"`
	ImageAltText       string                   `json:"image_alternate_text"`
	ImageCaption       string                   `json:"image_caption_text"`
	LastPublished      *string                  `json:"last_published_to_production"`
	LastUnpublished    *string                  `json:"last_unpublishing_date"`
	Pages              []Page                   `json:"course_pages"`
	Files              []File                   `json:"course_files"`
	EmbeddedMedia      map[string]EmbeddedMedia `json:"course_embedded_media"`
}

// Instructor is one entry of the course instructor list.
type Instructor struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName renders the instructor the way course home pages list them.
func (i Instructor) DisplayName() string {
	return strings.TrimSpace("Prof. " + strings.TrimSpace(i.FirstName+" "+i.LastName))
}

// ExtraCourseNumber is a cross-listed course number.
type ExtraCourseNumber struct {
	SortAsCol string `json:"sort_as_col"`
}

// Collection is one topic/subtopic/speciality triple.
type Collection struct {
	Feature    string `json:"ocw_feature"`
	Subfeature string `json:"ocw_subfeature"`
	Speciality string `json:"ocw_specialty"`
}

// IsPublished reports whether the course has a last-published timestamp that
// is not superseded by a later unpublish. Unparseable timestamps count as
// absent.
func (c *Course) IsPublished() bool {
	published, ok := parseTimestamp(c.LastPublished)
	if !ok {
		return false
	}
	unpublished, ok := parseTimestamp(c.LastUnpublished)
	if !ok {
		return true
	}
	return published.After(unpublished)
}

func parseTimestamp(s *string) (time.Time, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(publishedLayout, strings.TrimSpace(*s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CourseNumber joins the primary sort key with the first cross-listed number.
func (c *Course) CourseNumber() string {
	n := string(c.SortAs)
	for _, extra := range c.ExtraCourseNumbers {
		if extra.SortAsCol != "" {
			return n + " / " + extra.SortAsCol
		}
	}
	return n
}

// Term renders "<semester> <year>".
func (c *Course) Term() string {
	return strings.TrimSpace(string(c.FromSemester) + " " + string(c.FromYear))
}

// DepartmentSlug returns the department segment of the legacy course URL
// (/courses/<department>/<slug>), or "" when the URL has no such segment.
func (c *Course) DepartmentSlug() string {
	parts := strings.Split(c.URL, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// Page is one content node of the course.
type Page struct {
	UID            string `json:"uid"`
	ParentUID      string `json:"parent_uid"`
	ShortURL       string `json:"short_url"`
	Title          string `json:"title"`
	ShortPageTitle string `json:"short_page_title"`
	ListTitle      string `json:"list_title"`
	Description    string `json:"description"`
	Text           string `json:"text"`
	BottomText     string `json:"bottomtext"`
	Type           string `json:"type"`
	URL            string `json:"url"`
	IsImageGallery bool   `json:"is_image_gallery"`
	IsMediaGallery bool   `json:"is_media_gallery"`
	ListInLeftNav  bool   `json:"list_in_left_nav"`
}

func (p *Page) IsCourseHome() bool { return p.Type == TypeCourseHome }

func (p *Page) IsInstructorInsights() bool { return p.Type == TypeInstructorInsights }

// IsExcluded reports page types that are never emitted, together with their
// subtree.
func (p *Page) IsExcluded() bool {
	return p.Type == TypeSRHomePage || p.Type == TypeDownloadSection
}

// LegacyPath is the page's legacy URL with any trailing /index.htm removed.
func (p *Page) LegacyPath() string {
	return strings.TrimSuffix(strings.TrimSuffix(p.URL, "/index.htm"), "/index.html")
}
