package vidmoly

import (
	"fmt"
	"regexp"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

var fileRE = regexp.MustCompile(`(?s)file:\s*"([^"]+\.m3u8[^"]*)"`)

var Extractor = &models.Extractor{
	Name:     "Vidmoly",
	CodeName: "vidmoly",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"vidmoly.to", "vidmoly.me", "vidmoly.net"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?vidmoly\.(?:to|me|net)/(?:embed-|w/)?(?P<id>\w+)`),
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
	matches := fileRE.FindStringSubmatch(page)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}

	// the cdn rejects playback without the embed origin as referer
	referer, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to build referer: %w", err)
	}
	stream := ctx.NewStream(util.FixURL(matches[1]))
	stream.IsM3U8 = true
	stream.Headers = map[string]string{
		"Referer": referer,
	}
	return []*models.RawStream{stream}, nil
}
