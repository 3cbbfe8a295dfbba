package goodstream

import (
	"fmt"
	"regexp"
	"strings"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
)

var sourceRE = regexp.MustCompile(`<source\s+src="([^"]+)"`)

var Extractor = &models.Extractor{
	Name:     "GoodStream",
	CodeName: "goodstream",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"goodstream.uno", "goodstream.one"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?goodstream\.(?:uno|one)/video/(?P<id>[0-9a-zA-Z]+)`),
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

func GetVideo(ctx *models.ResolveContext) ([]*models.RawStream, error) {
	page, err := util.FetchPage(ctx.Context, ctx.Client(), ctx.MatchedContentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	matches := sourceRE.FindStringSubmatch(page)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}
	stream := ctx.NewStream(util.FixURL(matches[1]))
	stream.IsM3U8 = strings.Contains(matches[1], ".m3u8")
	return []*models.RawStream{stream}, nil
}
