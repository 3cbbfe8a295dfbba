package kwik

import (
	"fmt"
	"regexp"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
	"unembed/util/parser"
)

var sourceRE = regexp.MustCompile(`const\s+source\s*=\s*'([^']+)'`)

var Extractor = &models.Extractor{
	Name:     "Kwik",
	CodeName: "kwik",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"kwik.cx", "kwik.si"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://kwik\.(?:cx|si|li)/[ef]/(?P<id>\w+)`),
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
	// the player page refuses requests without a same-site referer
	origin, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page origin: %w", err)
	}
	page, err := util.FetchPage(ctx.Context, ctx.Client(), ctx.MatchedContentURL, map[string]string{
		"Referer": origin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	matches := sourceRE.FindStringSubmatch(deobf.UnpackAll(page))
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}
	stream := ctx.NewStream(util.FixURL(matches[1]))
	stream.IsM3U8 = true
	stream.Headers = map[string]string{
		"Referer": origin,
	}
	return []*models.RawStream{stream}, nil
}
