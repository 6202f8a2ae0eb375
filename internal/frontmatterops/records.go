package frontmatterops

// Layouts and hugo types emitted in front matter.
const (
	TypeCourse = "course"

	LayoutCourseHome         = "course_home"
	LayoutResource           = "resource"
	LayoutPDF                = "pdf"
	LayoutInstructorInsights = "instructor_insights"
	LayoutSearch             = "search"
	LayoutCourseIndex        = "course_index"
)

// MenuEntry is one Hugo menu entry.
type MenuEntry struct {
	Identifier string `yaml:"identifier"`
	Name       string `yaml:"name"`
	Weight     int    `yaml:"weight"`
	Parent     string `yaml:"parent,omitempty"`
}

// Menu maps a menu name (the course id) to the entry.
type Menu map[string]MenuEntry

// ParentLink is attached to any record whose immediate container is not the
// course home page. Like every uid key it holds the dashed form; menu
// identifiers keep the compact form.
type ParentLink struct {
	ParentUID   string `yaml:"parent_uid,omitempty"`
	ParentTitle string `yaml:"parent_title,omitempty"`
	ParentType  string `yaml:"parent_type,omitempty"`
}

// Subtopic groups specialities below a topic.
type Subtopic struct {
	Subtopic     string   `yaml:"subtopic"`
	Specialities []string `yaml:"specialities"`
}

// Topic is one consolidated entry of the course taxonomy.
type Topic struct {
	Topic     string     `yaml:"topic"`
	Subtopics []Subtopic `yaml:"subtopics"`
}

type CourseInfo struct {
	Instructors  []string `yaml:"instructors"`
	Department   string   `yaml:"department"`
	Topics       []Topic  `yaml:"topics"`
	CourseNumber string   `yaml:"course_number"`
	Term         string   `yaml:"term"`
	Level        string   `yaml:"level"`
}

// CourseHome is the front matter of a course's root _index.md.
type CourseHome struct {
	Title              string     `yaml:"title"`
	UID                string     `yaml:"uid"`
	CourseID           string     `yaml:"course_id"`
	Type               string     `yaml:"type"`
	Layout             string     `yaml:"layout"`
	CourseTitle        string     `yaml:"course_title"`
	CourseDescription  string     `yaml:"course_description"`
	CourseImageURL     string     `yaml:"course_image_url"`
	CourseImageAlt     string     `yaml:"course_image_alternate_text,omitempty"`
	CourseImageCaption string     `yaml:"course_image_caption_text,omitempty"`
	CourseInfo         CourseInfo `yaml:"course_info"`
	Menu               Menu       `yaml:"menu"`
}

// Section is the front matter of a page, leaf or directory index.
type Section struct {
	Title       string     `yaml:"title"`
	LinkTitle   string     `yaml:"linktitle,omitempty"`
	ListTitle   string     `yaml:"list_title,omitempty"`
	UID         string     `yaml:"uid"`
	CourseID    string     `yaml:"course_id"`
	Type        string     `yaml:"type"`
	Layout      string     `yaml:"layout,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Menu        Menu       `yaml:"menu,omitempty"`
	Videos      []string   `yaml:"videos,omitempty"`
	ParentLink  ParentLink `yaml:",inline"`
}

// Resource is the front matter of a file or embedded media page.
type Resource struct {
	Title        string     `yaml:"title"`
	Description  string     `yaml:"description"`
	UID          string     `yaml:"uid"`
	CourseID     string     `yaml:"course_id"`
	Type         string     `yaml:"type"`
	Layout       string     `yaml:"layout"`
	ResourceType string     `yaml:"resourcetype"`
	File         string     `yaml:"file,omitempty"`
	FileType     string     `yaml:"file_type,omitempty"`
	ParentLink   ParentLink `yaml:",inline"`
}

type ImageMetadata struct {
	Caption string `yaml:"caption"`
	Credit  string `yaml:"credit"`
	AltText string `yaml:"image-alt"`
}

// Image is a Resource with image metadata. The metadata block is always
// present, with empty strings for missing values.
type Image struct {
	Resource      `yaml:",inline"`
	ImageMetadata ImageMetadata `yaml:"image_metadata"`
}

type VideoMetadata struct {
	YouTubeID string `yaml:"youtube_id"`
}

type VideoFiles struct {
	ArchiveURL          string `yaml:"archive_url"`
	VideoThumbnailFile  string `yaml:"video_thumbnail_file"`
	VideoCaptionsFile   string `yaml:"video_captions_file"`
	VideoTranscriptFile string `yaml:"video_transcript_file"`
}

// Video is a Resource for embedded media.
type Video struct {
	Resource      `yaml:",inline"`
	VideoMetadata VideoMetadata `yaml:"video_metadata"`
	VideoFiles    VideoFiles    `yaml:"video_files"`
}

// Static is the front matter of scaffold pages that do not come from the
// course graph.
type Static struct {
	Title    string `yaml:"title"`
	CourseID string `yaml:"course_id,omitempty"`
	Type     string `yaml:"type"`
	Layout   string `yaml:"layout"`
}
