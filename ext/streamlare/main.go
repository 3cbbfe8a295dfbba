// Package streamlare resolves Streamlare embeds through the host's
// JSON API instead of page scraping.
package streamlare

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/guregu/null/v6/zero"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

var Extractor = &models.Extractor{
	Name:     "Streamlare",
	CodeName: "streamlare",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"streamlare.com", "slmaxed.com", "sltube.org"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:streamlare\.com|slmaxed\.com|sltube\.org)/[ev]/(?P<id>\w+)`),
	},

	Run: func(ctx *models.ResolveContext) (*models.ExtractorResponse, error) {
		streams, err := GetVideo(ctx)
		if err != nil {
			return nil, err
		}
		return &models.ExtractorResponse{
			Streams: streams,
		}, nil
	},
}

type streamResponse struct {
	Status string                 `json:"status"`
	Result map[string]renditionTO `json:"result"`
}

// renditionTO is one rendition in the API response; label is null for
// unnamed single renditions.
type renditionTO struct {
	Label zero.String `json:"label"`
	File  string      `json:"file"`
	Type  string      `json:"type"`
}

func GetVideo(ctx *models.ResolveContext) ([]*models.RawStream, error) {
	apiURL, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/api/video/stream/get")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve api url: %w", err)
	}

	var response streamResponse
	err = util.PostJSON(ctx.Context, ctx.Client(), apiURL, map[string]string{
		"id": ctx.MatchedContentID,
	}, nil, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to call stream api: %w", err)
	}
	if response.Status != "success" {
		return nil, util.ErrUnavailable
	}

	names := make([]string, 0, len(response.Result))
	for name := range response.Result {
		names = append(names, name)
	}
	sort.Strings(names)

	var streams []*models.RawStream
	for _, name := range names {
		rendition := response.Result[name]
		if rendition.File == "" {
			continue
		}
		stream := ctx.NewStream(util.FixURL(rendition.File))
		stream.IsM3U8 = strings.Contains(rendition.File, ".m3u8")
		if label := rendition.Label.ValueOrZero(); label != "" {
			stream.Quality = label
		} else if name != "" {
			stream.Quality = name
		}
		streams = append(streams, stream)
	}
	if len(streams) == 0 {
		return nil, util.ErrNoStreamsFound
	}
	return streams, nil
}
