package course

import (
	"path"
	"strings"
)

// ResourceType classifies files and media for front matter.
type ResourceType string

const (
	ResourceImage    ResourceType = "Image"
	ResourceVideo    ResourceType = "Video"
	ResourceDocument ResourceType = "Document"
	ResourceOther    ResourceType = "Other"
)

// File type tags used by the export.
const (
	FileTypeImage = "OCWImage"
	FileTypeFile  = "OCWFile"
)

// File is a downloadable resource attached to a page.
type File struct {
	UID          string `json:"uid"`
	ParentUID    string `json:"parent_uid"`
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	FileType     string `json:"file_type"`
	FileLocation string `json:"file_location"`
	Caption      string `json:"caption"`
	Credit       string `json:"credit"`
	AltText      string `json:"alt_text"`
}

// HasLocation reports whether the file has a storage location. Files without
// one produce no output.
func (f *File) HasLocation() bool { return strings.TrimSpace(f.FileLocation) != "" }

// BaseName is the file id without its extension.
func (f *File) BaseName() string {
	return strings.TrimSuffix(f.ID, path.Ext(f.ID))
}

var documentMIMETypes = map[string]bool{
	"application/pdf":               true,
	"application/msword":            true,
	"application/rtf":               true,
	"application/vnd.ms-excel":      true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
}

// ResourceType derives the resource classification from the file's type tag
// and MIME type.
func (f *File) ResourceType() ResourceType {
	mime := strings.ToLower(strings.TrimSpace(f.FileType))
	switch {
	case f.Type == FileTypeImage, strings.HasPrefix(mime, "image/"):
		return ResourceImage
	case strings.HasPrefix(mime, "video/"):
		return ResourceVideo
	case strings.HasPrefix(mime, "text/"), documentMIMETypes[mime]:
		return ResourceDocument
	default:
		return ResourceOther
	}
}

// LegacyPath is where the legacy site served the file: the parent page's URL
// followed by the file id. Empty when the parent is unknown.
func (f *File) LegacyPath(parent *Page) string {
	if parent == nil || parent.URL == "" {
		return ""
	}
	return parent.LegacyPath() + "/" + f.ID
}
