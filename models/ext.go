package models

import (
	"regexp"

	"unembed/enums"
)

type Extractor struct {
	Name        string
	CodeName    string
	Category    enums.ExtractorCategory
	URLPatterns []*regexp.Regexp
	Host        []string
	IsRedirect  bool
	IsComposite bool
	Client      HTTPClient

	Run func(*ResolveContext) (*ExtractorResponse, error)
}

type ExtractorResponse struct {
	Streams []*RawStream
	URL     string // redirected URL
}

// MatchURL tries the extractor's patterns in order and returns the
// submatches of the first one that matches, or nil.
func (extractor *Extractor) MatchURL(rawURL string) (*regexp.Regexp, []string) {
	for _, pattern := range extractor.URLPatterns {
		if matches := pattern.FindStringSubmatch(rawURL); matches != nil {
			return pattern, matches
		}
	}
	return nil, nil
}

func (extractor *Extractor) NewStream(streamURL string) *RawStream {
	return NewRawStream(extractor.Name, streamURL)
}
