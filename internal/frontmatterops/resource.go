package frontmatterops

import (
	"git.home.luguber.info/inful/coursebuilder/internal/course"
	"git.home.luguber.info/inful/coursebuilder/internal/links"
)

// ResourceParams are the parts of a resource record that depend on the
// file's position rather than the file itself.
type ResourceParams struct {
	CourseID string
	Parent   ParentLink
	// Layout overrides the resource layout, e.g. pdf for course home files.
	Layout string
	Links  links.Options
}

func (p ResourceParams) layout() string {
	if p.Layout != "" {
		return p.Layout
	}
	return LayoutResource
}

func fileResource(f *course.File, p ResourceParams) Resource {
	title := f.Title
	if title == "" {
		title = f.ID
	}
	return Resource{
		Title:        title,
		Description:  f.Description,
		UID:          CanonicalUID(f.UID),
		CourseID:     p.CourseID,
		Type:         TypeCourse,
		Layout:       p.layout(),
		ResourceType: string(f.ResourceType()),
		File:         links.StripStoragePrefix(f.FileLocation, p.Links),
		FileType:     f.FileType,
		ParentLink:   p.Parent,
	}
}

// FileFrontMatter builds the record of a document or other file.
func FileFrontMatter(f *course.File, p ResourceParams) Resource {
	return fileResource(f, p)
}

// ImageFrontMatter builds the record of an image file.
func ImageFrontMatter(f *course.File, p ResourceParams) Image {
	return Image{
		Resource: fileResource(f, p),
		ImageMetadata: ImageMetadata{
			Caption: f.Caption,
			Credit:  f.Credit,
			AltText: f.AltText,
		},
	}
}

// VideoFrontMatter builds the record of an embedded media item.
func VideoFrontMatter(m *course.EmbeddedMedia, p ResourceParams) Video {
	title := m.Title
	if title == "" {
		title = m.ShortURL
	}
	strip := func(s string) string { return links.StripStoragePrefix(s, p.Links) }

	return Video{
		Resource: Resource{
			Title:        title,
			Description:  m.Description,
			UID:          CanonicalUID(m.UID),
			CourseID:     p.CourseID,
			Type:         TypeCourse,
			Layout:       p.layout(),
			ResourceType: string(course.ResourceVideo),
			File:         strip(m.TechnicalLocation),
			ParentLink:   p.Parent,
		},
		VideoMetadata: VideoMetadata{YouTubeID: m.YouTubeID()},
		VideoFiles: VideoFiles{
			ArchiveURL:          strip(m.ArchiveURL()),
			VideoThumbnailFile:  m.ThumbnailURL(),
			VideoCaptionsFile:   strip(m.CaptionsURL()),
			VideoTranscriptFile: strip(m.TranscriptURL()),
		},
	}
}
