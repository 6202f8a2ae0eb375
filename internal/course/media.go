package course

import "strings"

// MediaKind is the closed set of embed kinds.
type MediaKind int

const (
	MediaIframe MediaKind = iota
	MediaYouTubeStream
	MediaYouTubeMP4
	MediaHostedCaptioned
)

// Entry ids with special meaning inside an embedded media group.
const (
	EntryYouTubeStream     = "Video-YouTube-Stream"
	EntryYouTubeStreamCopy = "copy_of_Video-YouTube-Stream"
	EntryYouTubeMP4        = "Video-YouTube-MP4"
	Entry3PlayYouTube      = "3Play-3PlayYouTubeid-Stream"
	EntryArchiveMP4        = "Video-InternetArchive-MP4"
)

var streamEntryIDs = []string{EntryYouTubeStream, EntryYouTubeStreamCopy, Entry3PlayYouTube}

// EmbeddedMedia is a video/audio/iframe embed attached to a page.
type EmbeddedMedia struct {
	UID               string       `json:"uid"`
	ParentUID         string       `json:"parent_uid"`
	Title             string       `json:"title"`
	ShortURL          string       `json:"short_url"`
	Description       string       `json:"about_this_resource_text"`
	TechnicalLocation string       `json:"technical_location"`
	Entries           []MediaEntry `json:"embedded_media"`
}

// MediaEntry is one rendition or sidecar of an embedded media group.
type MediaEntry struct {
	ID                string `json:"id"`
	MediaInfo         string `json:"media_info"`
	TechnicalLocation string `json:"technical_location"`
	Title             string `json:"title"`
}

// Location prefers the technical location and falls back to media_info.
func (e MediaEntry) Location() string {
	if e.TechnicalLocation != "" {
		return e.TechnicalLocation
	}
	return e.MediaInfo
}

func (m *EmbeddedMedia) entry(ids ...string) (MediaEntry, bool) {
	for _, id := range ids {
		for _, e := range m.Entries {
			if e.ID == id {
				return e, true
			}
		}
	}
	return MediaEntry{}, false
}

func (m *EmbeddedMedia) entryWithSuffix(suffixes ...string) (MediaEntry, bool) {
	for _, e := range m.Entries {
		id := strings.ToLower(e.ID)
		for _, s := range suffixes {
			if strings.HasSuffix(id, s) {
				return e, true
			}
		}
	}
	return MediaEntry{}, false
}

// Kind classifies the embed.
func (m *EmbeddedMedia) Kind() MediaKind {
	if _, ok := m.entry(streamEntryIDs...); ok {
		return MediaYouTubeStream
	}
	if _, ok := m.entry(EntryYouTubeMP4); ok {
		return MediaYouTubeMP4
	}
	if m.CaptionsURL() != "" {
		return MediaHostedCaptioned
	}
	return MediaIframe
}

// IsYouTube reports whether the embed is backed by a YouTube video.
func (m *EmbeddedMedia) IsYouTube() bool {
	k := m.Kind()
	return k == MediaYouTubeStream || k == MediaYouTubeMP4
}

// YouTubeID returns the video id of YouTube-kind embeds.
func (m *EmbeddedMedia) YouTubeID() string {
	e, ok := m.entry(append(streamEntryIDs, EntryYouTubeMP4)...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(e.MediaInfo)
}

// ThumbnailURL is the YouTube default thumbnail, empty for other kinds.
func (m *EmbeddedMedia) ThumbnailURL() string {
	if !m.IsYouTube() {
		return ""
	}
	id := m.YouTubeID()
	if id == "" {
		return ""
	}
	return "https://img.youtube.com/vi/" + id + "/default.jpg"
}

func (m *EmbeddedMedia) CaptionsURL() string {
	e, ok := m.entryWithSuffix(".vtt", ".srt")
	if !ok {
		return ""
	}
	return e.Location()
}

func (m *EmbeddedMedia) TranscriptURL() string {
	e, ok := m.entryWithSuffix("transcript.pdf")
	if !ok {
		return ""
	}
	return e.Location()
}

func (m *EmbeddedMedia) ArchiveURL() string {
	e, ok := m.entry(EntryArchiveMP4)
	if !ok {
		return ""
	}
	return e.Location()
}
