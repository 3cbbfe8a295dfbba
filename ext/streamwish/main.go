// Package streamwish handles the wish player engine and its rebrands.
// The sites differ only in domains and branding; the player setup is
// identical, so the descriptors share one extraction path.
package streamwish

import (
	"fmt"
	"regexp"
	"strings"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
)

var (
	fileRE    = regexp.MustCompile(`file:\s*"([^"]+)"`)
	sourcesRE = regexp.MustCompile(`sources:\s*\[\{file:\s*"([^"]+)"`)
)

var Extractor = &models.Extractor{
	Name:     "StreamWish",
	CodeName: "streamwish",
	Category: enums.ExtractorCategoryVideo,
	Host: []string{
		"streamwish.com",
		"streamwish.to",
		"awish.pro",
		"embedwish.com",
		"wishfast.top",
	},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:streamwish\.(?:com|to)|awish\.pro|embedwish\.com|wishfast\.top|strwish\.xyz)/(?:e/)?(?P<id>\w+)`),
	},

	Run: run,
}

var VidHideExtractor = &models.Extractor{
	Name:     "VidHide",
	CodeName: "vidhide",
	Category: enums.ExtractorCategoryVideo,
	Host: []string{
		"vidhide.com",
		"vidhidepro.com",
		"vidhidevip.com",
	},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:vidhide(?:pro|vip|plus)?\.com|vid-hide\.com)/(?:v|e|embed-|file/)?/?(?P<id>\w+)`),
	},

	Run: run,
}

var FileLionsExtractor = &models.Extractor{
	Name:     "FileLions",
	CodeName: "filelions",
	Category: enums.ExtractorCategoryVideo,
	Host: []string{
		"filelions.to",
		"filelions.live",
		"filelions.site",
	},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?filelions\.(?:to|live|site|online|co)/(?:v|f|e|embed-)?/?(?P<id>\w+)`),
	},

	Run: run,
}

func run(ctx *models.ResolveContext) (*models.ExtractorResponse, error) {
	streams, err := GetVideo(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ExtractorResponse{
		Streams: streams,
	}, nil
}

func GetVideo(ctx *models.ResolveContext) ([]*models.RawStream, error) {
	page, err := util.FetchPage(ctx.Context, ctx.Client(), ctx.MatchedContentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

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
	if matches := sourcesRE.FindStringSubmatch(text); matches != nil {
		return matches[1]
	}
	if matches := fileRE.FindStringSubmatch(text); matches != nil {
		return matches[1]
	}
	return ""
}
