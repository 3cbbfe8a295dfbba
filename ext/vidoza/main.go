package vidoza

import (
	"fmt"
	"regexp"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
)

var sourceRE = regexp.MustCompile(`(?s)sourcesCode:\s\[\{\ssrc:\s"(.+?)", type`)

var Extractor = &models.Extractor{
	Name:     "Vidoza",
	CodeName: "vidoza",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"vidoza.net", "videzz.net"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:vidoza|videzz)\.net/(?:embed-)?(?P<id>\w+)\.html`),
		regexp.MustCompile(`https?://(?:www\.)?(?:vidoza|videzz)\.net/(?:embed-)?(?P<id>\w+)`),
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
	return []*models.RawStream{ctx.NewStream(util.FixURL(matches[1]))}, nil
}
