package mp4upload

import (
	"fmt"
	"regexp"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
	"unembed/util/parser"
)

var srcRE = regexp.MustCompile(`src:\s*"(https?://[^"]+)"`)

var Extractor = &models.Extractor{
	Name:     "Mp4upload",
	CodeName: "mp4upload",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"mp4upload.com"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?mp4upload\.com/(?:embed-)?(?P<id>\w+)`),
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

	// the player setup ships packed; older embeds leave it plain
	matches := srcRE.FindStringSubmatch(deobf.UnpackAll(page))
	if matches == nil {
		matches = srcRE.FindStringSubmatch(page)
	}
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}

	referer, err := parser.ResolveAgainstOrigin(pageURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to build referer: %w", err)
	}
	stream := ctx.NewStream(util.FixURL(matches[1]))
	stream.Headers = map[string]string{
		"Referer": referer,
	}
	return []*models.RawStream{stream}, nil
}
