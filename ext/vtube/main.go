package vtube

import (
	"fmt"
	"regexp"
	"strings"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
)

var fileRE = regexp.MustCompile(`file:\s*"([^"]+)"`)

var Extractor = &models.Extractor{
	Name:     "VTube",
	CodeName: "vtube",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"vtube.to", "vtbe.to"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:vtube|vtbe)\.(?:to|network)/(?:embed-)?(?P<id>\w+)`),
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

	matches := fileRE.FindStringSubmatch(deobf.UnpackAll(page))
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}
	stream := ctx.NewStream(util.FixURL(matches[1]))
	stream.IsM3U8 = strings.Contains(matches[1], ".m3u8")
	return []*models.RawStream{stream}, nil
}
