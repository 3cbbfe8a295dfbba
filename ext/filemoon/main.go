package filemoon

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
	"unembed/util/parser"
)

var (
	iframeRE = regexp.MustCompile(`<iframe *(?:[^>]+ )?src=(?:'([^']+)'|"([^"]+)")[^>]*>`)
	scriptRE = regexp.MustCompile(`(?s)<script\s+[^>]*?data-cfasync=["']?false["']?[^>]*>(.+?)</script>`)
	fileRE   = regexp.MustCompile(`(?s)file:\s*"([^"]+\.m3u8[^"]*)"`)
)

var Extractor = &models.Extractor{
	Name:     "Filemoon",
	CodeName: "filemoon",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"filemoon.sx", "filemoon.to", "kerapoxy.cc"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:filemoon\.(?:sx|to|in|link|nl|wf)|kerapoxy\.cc|furher\.in)/(?:e|d)/(?P<id>\w+)`),
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

	// newer embeds wrap the player in an inner iframe
	if iframeSrc := findIframe(page); iframeSrc != "" {
		iframeURL, err := parser.ResolveURL(pageURL, iframeSrc)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve iframe url: %w", err)
		}
		page, err = util.FetchPage(ctx.Context, ctx.Client(), iframeURL, map[string]string{
			"Referer":        pageURL,
			"Sec-Fetch-Dest": "iframe",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch iframe: %w", err)
		}
		pageURL = iframeURL
	}

	for _, script := range scriptRE.FindAllStringSubmatch(page, -1) {
		content := strings.TrimSpace(script[1])
		if !deobf.Detect(content) {
			continue
		}
		unpacked, err := deobf.Unpack(content)
		if err != nil {
			zap.S().Debugf("filemoon: script unpack failed: %v", err)
			continue
		}
		if matches := fileRE.FindStringSubmatch(unpacked); matches != nil {
			return expandMaster(ctx, util.FixURL(matches[1]), pageURL), nil
		}
	}
	return nil, util.ErrSourceNotFound
}

func findIframe(page string) string {
	matches := iframeRE.FindStringSubmatch(page)
	if matches == nil {
		return ""
	}
	if matches[1] != "" {
		return matches[1]
	}
	return matches[2]
}

// expandMaster emits the adaptive master entry plus one entry per
// variant. Expansion failures are absorbed, leaving the master alone.
func expandMaster(ctx *models.ResolveContext, masterURL string, referer string) []*models.RawStream {
	headers := map[string]string{"Referer": referer}

	master := ctx.NewStream(masterURL)
	master.IsM3U8 = true
	master.Headers = headers
	streams := []*models.RawStream{master}

	expanded, err := parser.ParseM3U8FromURL(ctx.Context, masterURL, &parser.Options{
		Client:  ctx.Client(),
		Headers: headers,
		Source:  ctx.Extractor.Name,
	})
	if err != nil {
		zap.S().Debugf("filemoon: master expansion failed: %v", err)
		return streams
	}
	for _, stream := range expanded {
		if stream.URL != masterURL {
			streams = append(streams, stream)
		}
	}
	return streams
}
