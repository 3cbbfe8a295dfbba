package doodstream

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

const domainPattern = `(?:dood(?:stream)?\.(?:com|co|to|so|la|li|ws|sh|watch|pm|wf|re|yt|cx|one|tech|work)|doods\.pro|ds2play\.com|ds2video\.com|d0o0d\.com|do0od\.com|d000d\.com|d0000d\.com|dooood\.com|dooodster\.com|vidply\.com|do7go\.com|all3do\.com|doply\.net)`

var passRE = regexp.MustCompile(`(?s)\$\.get\(\s*['"](/pass_md5/[\w-]+/([\w-]+))['"]\s*,\s*function\(\s*data\s*\)`)

var Extractor = &models.Extractor{
	Name:     "Dood",
	CodeName: "doodstream",
	Category: enums.ExtractorCategoryVideo,
	Host: []string{
		"doodstream.com",
		"dood.li",
		"dood.to",
		"ds2play.com",
		"vidply.com",
	},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?` + domainPattern + `/e/(?P<id>[0-9a-zA-Z]+)`),
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

// ShortExtractor rewrites download page links to their embed form.
var ShortExtractor = &models.Extractor{
	Name:       "Dood (Short)",
	CodeName:   "doodstream:short",
	Category:   enums.ExtractorCategoryVideo,
	IsRedirect: true,
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?` + domainPattern + `/d/(?P<id>[0-9a-zA-Z]+)`),
	},

	Run: func(ctx *models.ResolveContext) (*models.ExtractorResponse, error) {
		return &models.ExtractorResponse{
			URL: strings.Replace(ctx.MatchedContentURL, "/d/", "/e/", 1),
		}, nil
	},
}

func GetVideo(ctx *models.ResolveContext) ([]*models.RawStream, error) {
	pageURL := ctx.MatchedContentURL
	page, err := util.FetchPage(ctx.Context, ctx.Client(), pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	matches := passRE.FindStringSubmatch(page)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}
	token := matches[2]

	passURL, err := parser.ResolveAgainstOrigin(pageURL, matches[1])
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pass url: %w", err)
	}
	videoBase, err := util.FetchPage(ctx.Context, ctx.Client(), passURL, map[string]string{
		"Referer": pageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video base: %w", err)
	}
	videoBase = strings.TrimSpace(videoBase)
	if videoBase == "" {
		return nil, util.ErrSourceNotFound
	}

	// the cdn expects a random tail plus the token and a timestamp
	videoURL := fmt.Sprintf(
		"%s%s?token=%s&expiry=%d",
		videoBase, util.RandomAlphaNumericString(10), token, time.Now().UnixMilli(),
	)

	referer, err := parser.ResolveAgainstOrigin(pageURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to build referer: %w", err)
	}
	stream := ctx.NewStream(videoURL)
	stream.Headers = map[string]string{
		"Referer": referer,
	}
	return []*models.RawStream{stream}, nil
}
