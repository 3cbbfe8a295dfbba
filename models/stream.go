package models

import (
	"net/url"
	"path"
	"strings"
)

const (
	// DefaultQuality labels streams with no quality information
	// or a single adaptive rendition.
	DefaultQuality = "auto"

	// BackupSuffix is appended to the source label of mirror streams.
	BackupSuffix = " (Backup)"
)

// RawStream is a single playable stream resolved from an embed page.
// URL is always absolute by the time the stream leaves the engine.
type RawStream struct {
	URL       string            `json:"url"`
	IsM3U8    bool              `json:"is_m3u8"`
	Quality   string            `json:"quality"`
	Source    string            `json:"source"`
	Headers   map[string]string `json:"headers,omitempty"`
	Subtitles []*SubtitleTrack  `json:"subtitles,omitempty"`
}

func NewRawStream(source string, streamURL string) *RawStream {
	return &RawStream{
		URL:     streamURL,
		Quality: DefaultQuality,
		Source:  source,
	}
}

// BackupSource builds the display label for a backup mirror.
func BackupSource(name string) string {
	return name + BackupSuffix
}

type SubtitleTrack struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

func NewSubtitleTrack(name string, trackURL string) *SubtitleTrack {
	return &SubtitleTrack{
		URL:      trackURL,
		Name:     name,
		MimeType: SubtitleMimeType(trackURL),
	}
}

// SubtitleMimeType hints the MIME type of a subtitle track from its
// file extension. Unknown extensions yield an empty hint.
func SubtitleMimeType(trackURL string) string {
	p := trackURL
	if u, err := url.Parse(trackURL); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".vtt":
		return "text/vtt"
	case ".srt":
		return "application/x-subrip"
	case ".ass", ".ssa":
		return "text/x-ssa"
	case ".ttml", ".dfxp":
		return "application/ttml+xml"
	}
	return ""
}
