package parser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/unki2aut/go-mpd"
	"github.com/unki2aut/go-xsd-types"
	"go.uber.org/zap"

	"unembed/models"
	"unembed/util"
)

// ParseMPDFromURL fetches a DASH manifest and expands it into stream
// entries.
func ParseMPDFromURL(ctx context.Context, manifestURL string, opts *Options) ([]*models.RawStream, error) {
	content, err := util.FetchBytes(ctx, opts.client(), manifestURL, opts.headers())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mpd: %w", err)
	}
	return ParseMPDContent(content, manifestURL, opts)
}

// ParseMPDContent expands a DASH manifest into stream entries, one per
// video representation of the first period. Representations addressed
// only through segment templates have no single URL and are skipped.
func ParseMPDContent(content []byte, baseURL string, opts *Options) ([]*models.RawStream, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	mpdDoc := &mpd.MPD{}
	if err := mpdDoc.Decode(content); err != nil {
		return nil, fmt.Errorf("failed to decode mpd: %w", err)
	}
	if len(mpdDoc.Period) == 0 {
		return nil, errors.New("no periods found in mpd")
	}

	period := mpdDoc.Period[0]
	if len(period.AdaptationSets) == 0 {
		return nil, errors.New("no adaptation sets found in period")
	}
	zap.S().Debugf(
		"mpd manifest: %d adaptation sets, %ds total",
		len(period.AdaptationSets),
		getTotalDurationSeconds(mpdDoc.MediaPresentationDuration),
	)

	manifestBase := resolveManifestBaseURL(base, mpdDoc.BaseURL)
	periodBase := resolveManifestBaseURL(manifestBase, period.BaseURL)

	var streams []*models.RawStream
	for _, adaptationSet := range period.AdaptationSets {
		if adaptationSet == nil {
			continue
		}
		setBase := resolveManifestBaseURL(periodBase, adaptationSet.BaseURL)
		for _, representation := range adaptationSet.Representations {
			if !isVideoRepresentation(adaptationSet, representation) {
				continue
			}
			if stream := representationStream(representation, setBase, opts); stream != nil {
				streams = append(streams, stream)
			}
		}
	}
	return streams, nil
}

func representationStream(
	representation mpd.Representation,
	base *url.URL,
	opts *Options,
) *models.RawStream {
	if len(representation.BaseURL) == 0 {
		if representation.ID != nil {
			zap.S().Debugf("skipping segmented representation %s", *representation.ID)
		}
		return nil
	}
	representationBase := resolveManifestBaseURL(base, representation.BaseURL)
	stream := opts.newStream(representationBase.String())
	stream.Quality = representationQuality(representation)
	return stream
}

func representationQuality(representation mpd.Representation) string {
	if representation.Height != nil && *representation.Height > 0 {
		return fmt.Sprintf("%dp", *representation.Height)
	}
	return models.DefaultQuality
}

func isVideoRepresentation(adaptationSet *mpd.AdaptationSet, representation mpd.Representation) bool {
	mimeType := strings.ToLower(adaptationSet.MimeType)
	if strings.HasPrefix(mimeType, "audio/") {
		return false
	}
	if strings.HasPrefix(mimeType, "video/") {
		return true
	}

	var codecs string
	if representation.Codecs != nil {
		codecs = *representation.Codecs
	} else if adaptationSet.Codecs != nil {
		codecs = *adaptationSet.Codecs
	}
	if getVideoCodec(codecs) != "" {
		return true
	}
	if getAudioCodec(codecs) != "" {
		return false
	}

	if adaptationSet.ContentType != nil {
		return strings.ToLower(*adaptationSet.ContentType) == "video"
	}
	return representation.Height != nil && *representation.Height > 0
}

func resolveManifestBaseURL(base *url.URL, baseURLs []*mpd.BaseURL) *url.URL {
	if len(baseURLs) > 0 && baseURLs[0] != nil && baseURLs[0].Value != "" {
		if resolved, err := url.Parse(baseURLs[0].Value); err == nil {
			return base.ResolveReference(resolved)
		}
	}
	return base
}

func getTotalDurationSeconds(duration *xsd.Duration) int64 {
	if duration == nil {
		return 0
	}
	var total float64

	if duration.Hours != 0 {
		total += float64(duration.Hours) * 3600
	}
	if duration.Minutes != 0 {
		total += float64(duration.Minutes) * 60
	}
	total += float64(duration.Seconds)

	return int64(total)
}
