package yourupload

import (
	"fmt"
	"regexp"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

var fileRE = regexp.MustCompile(`file\s*:\s*['"]([^'"]+)['"]`)

var Extractor = &models.Extractor{
	Name:     "YourUpload",
	CodeName: "yourupload",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"yourupload.com"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?yourupload\.com/(?:embed|watch)/(?P<id>[0-9a-zA-Z]+)`),
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
	pageURL := ctx.MatchedContentURL
	page, err := util.FetchPage(ctx.Context, ctx.Client(), pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	matches := fileRE.FindStringSubmatch(page)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}
	streamURL, err := parser.ResolveURL(pageURL, util.FixURL(matches[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video url: %w", err)
	}

	stream := ctx.NewStream(streamURL)
	stream.Headers = map[string]string{
		"Referer": pageURL,
	}
	return []*models.RawStream{stream}, nil
}
