package supervideo

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
	Name:     "SuperVideo",
	CodeName: "supervideo",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"supervideo.tv", "supervideo.cc"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?supervideo\.(?:tv|cc)/(?:e/|embed-)?(?P<id>\w+)`),
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

	// some uploads ship the player setup unpacked
	streamURL := findFile(deobf.UnpackAll(page))
	if streamURL == "" {
		streamURL = findFile(page)
	}
	if streamURL == "" {
		return nil, util.ErrSourceNotFound
	}
	stream := ctx.NewStream(util.FixURL(streamURL))
	stream.IsM3U8 = strings.Contains(streamURL, ".m3u8")
	return []*models.RawStream{stream}, nil
}

func findFile(text string) string {
	if matches := fileRE.FindStringSubmatch(text); matches != nil {
		return matches[1]
	}
	return ""
}
