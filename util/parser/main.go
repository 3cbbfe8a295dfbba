// Package parser expands streaming manifests (HLS and DASH) into
// individual stream entries.
package parser

import (
	"maps"
	"net/url"
	"strings"

	"unembed/enums"
	"unembed/models"
	"unembed/util/networking"
)

// Options controls manifest fetching and how produced streams are
// labelled.
type Options struct {
	// Client is used for manifest fetches. When nil, the shared
	// default client is used.
	Client models.HTTPClient

	// Headers are sent with manifest fetches and attached to every
	// produced stream, so players can replay them.
	Headers map[string]string

	// Source labels every produced stream.
	Source string
}

func (o *Options) client() models.HTTPClient {
	if o != nil && o.Client != nil {
		return o.Client
	}
	return networking.GetDefaultHTTPClient()
}

func (o *Options) headers() map[string]string {
	if o == nil {
		return nil
	}
	return o.Headers
}

func (o *Options) sourceName() string {
	if o == nil || o.Source == "" {
		return "manifest"
	}
	return o.Source
}

func (o *Options) newStream(streamURL string) *models.RawStream {
	stream := models.NewRawStream(o.sourceName(), streamURL)
	if headers := o.headers(); len(headers) > 0 {
		stream.Headers = maps.Clone(headers)
	}
	return stream
}

// ResolveURL resolves ref against baseURL using standard relative
// reference resolution. Absolute and protocol-relative refs pass
// through with only the missing parts filled in.
func ResolveURL(baseURL string, ref string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(parsed).String(), nil
}

// ResolveAgainstOrigin resolves ref against only the scheme and host
// of pageURL, ignoring its path. Bare names like "master.m3u8" become
// "https://host/master.m3u8" regardless of the page's directory.
func ResolveAgainstOrigin(pageURL string, ref string) (string, error) {
	page, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	origin := &url.URL{
		Scheme: page.Scheme,
		Host:   page.Host,
		Path:   "/",
	}
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	return origin.ResolveReference(parsed).String(), nil
}

func resolveURL(base *url.URL, uri string) string {
	parsed, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return uri
	}
	return base.ResolveReference(parsed).String()
}

func getVideoCodec(codecs string) enums.MediaCodec {
	codecs = strings.ToLower(codecs)
	switch {
	case strings.Contains(codecs, "avc") || strings.Contains(codecs, "h264"):
		return enums.MediaCodecAVC
	case strings.Contains(codecs, "hvc") || strings.Contains(codecs, "h265") || strings.Contains(codecs, "hev1"):
		return enums.MediaCodecHEVC
	case strings.Contains(codecs, "av01"):
		return enums.MediaCodecAV1
	case strings.Contains(codecs, "vp9"):
		return enums.MediaCodecVP9
	case strings.Contains(codecs, "vp8"):
		return enums.MediaCodecVP8
	default:
		return ""
	}
}

func getAudioCodec(codecs string) enums.MediaCodec {
	codecs = strings.ToLower(codecs)
	switch {
	case strings.Contains(codecs, "mp4a"):
		return enums.MediaCodecAAC
	case strings.Contains(codecs, "opus"):
		return enums.MediaCodecOpus
	case strings.Contains(codecs, "mp3"):
		return enums.MediaCodecMP3
	case strings.Contains(codecs, "vorbis"):
		return enums.MediaCodecVorbis
	default:
		return ""
	}
}
