package uqload

import (
	"fmt"
	"regexp"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

var sourcesRE = regexp.MustCompile(`sources:\s*\[\s*"([^"]+)"`)

var Extractor = &models.Extractor{
	Name:     "Uqload",
	CodeName: "uqload",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"uqload.com", "uqload.co", "uqload.io"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?uqload\.(?:com|co|io|net)/(?:embed-)?(?P<id>\w+)\.html`),
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
	matches := sourcesRE.FindStringSubmatch(page)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}

	referer, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to build referer: %w", err)
	}
	stream := ctx.NewStream(util.FixURL(matches[1]))
	stream.Headers = map[string]string{
		"Referer": referer,
	}
	return []*models.RawStream{stream}, nil
}
