package sendvid

import (
	"fmt"
	"regexp"
	"strings"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
)

var sourceRE = regexp.MustCompile(`var\s+video_source\s*=\s*"([^"]+)"`)

var Extractor = &models.Extractor{
	Name:     "Sendvid",
	CodeName: "sendvid",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"sendvid.com"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?sendvid\.com/(?:embed/)?(?P<id>[0-9a-z]+)`),
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
	doc, err := util.FetchDocument(ctx.Context, ctx.Client(), ctx.MatchedContentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	streamURL, ok := doc.Find(`meta[property="og:video"]`).Attr("content")
	if !ok || streamURL == "" {
		// older embeds only set the player variable
		html, err := doc.Html()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize page: %w", err)
		}
		matches := sourceRE.FindStringSubmatch(html)
		if matches == nil {
			return nil, util.ErrSourceNotFound
		}
		streamURL = matches[1]
	}

	stream := ctx.NewStream(util.FixURL(streamURL))
	stream.IsM3U8 = strings.Contains(streamURL, ".m3u8")
	return []*models.RawStream{stream}, nil
}
