package streamtape

import (
	"fmt"
	"net/url"
	"regexp"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

var (
	robotLinkRE = regexp.MustCompile(`<div\s*[^>]*?id="robotlink"[^>]*?>[^<]*?(/get_video[^<]+?)</div>`)
	tokenRE     = regexp.MustCompile(`&token=([^&?\s'"]+)`)
)

var Extractor = &models.Extractor{
	Name:     "Streamtape",
	CodeName: "streamtape",
	Category: enums.ExtractorCategoryVideo,
	Host: []string{
		"streamtape.com",
		"streamtape.net",
		"streamtape.xyz",
		"shavetape.cash",
		"strtape.cloud",
	},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:streamtape\.(?:com|net|xyz|site|to)|shavetape\.cash|strtape\.cloud|strtpe\.link)/(?:e|v)/(?P<id>[0-9a-zA-Z]+)`),
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

	robotMatches := robotLinkRE.FindStringSubmatch(page)
	if robotMatches == nil {
		return nil, util.ErrSourceNotFound
	}

	// the token inside the robotlink div is stale; the real one is the
	// last token assigned anywhere in the page scripts
	tokenMatches := tokenRE.FindAllStringSubmatch(page, -1)
	if len(tokenMatches) == 0 {
		return nil, util.ErrSourceNotFound
	}
	token := tokenMatches[len(tokenMatches)-1][1]

	videoURL, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, util.FixURL(robotMatches[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve video url: %w", err)
	}
	parsed, err := url.Parse(videoURL)
	if err != nil {
		return nil, fmt.Errorf("invalid video url: %w", err)
	}
	query := parsed.Query()
	query.Set("token", token)
	query.Set("stream", "1")
	parsed.RawQuery = query.Encode()

	return []*models.RawStream{ctx.NewStream(parsed.String())}, nil
}
