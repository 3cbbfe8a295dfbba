package sibnet

import (
	"fmt"
	"regexp"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

var playerSrcRE = regexp.MustCompile(`player\.src\(\[\{src:\s*["']([^"']+)["']`)

var Extractor = &models.Extractor{
	Name:     "Sibnet",
	CodeName: "sibnet",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"video.sibnet.ru"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://video\.sibnet\.ru/shell\.php\?videoid=(?P<id>\d+)`),
		regexp.MustCompile(`https?://video\.sibnet\.ru/video(?P<id>\d+)`),
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

	matches := playerSrcRE.FindStringSubmatch(page)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}

	// the player source is a path like /v/.../video.mp4, relative to
	// the page, not to the site root
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
