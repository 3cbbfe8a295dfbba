// Package vidsrc resolves VidSrc embeds. The player sits two hops away
// from the embed page (rcp frame, then prorcp script) and the final
// file URL needs placeholder junk stripped; some entries carry a
// second mirror joined with " or ".
package vidsrc

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

var (
	iframeRE      = regexp.MustCompile(`id="player_iframe"[^>]*src="([^"]+)"`)
	prorcpRE      = regexp.MustCompile(`src:\s*['"](/prorcp/[^'"]+)['"]`)
	fileRE        = regexp.MustCompile(`file:\s*['"]([^'"]+)['"]`)
	placeholderRE = regexp.MustCompile(`\{[^}]*\}/?`)
)

var Extractor = &models.Extractor{
	Name:     "VidSrc",
	CodeName: "vidsrc",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"vidsrc.net", "vidsrc.xyz", "vidsrc.me"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?vidsrc\.(?:net|xyz|in|pm|me|vc)/embed/(?P<id>[\w/?=&.-]+)`),
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
	matches := iframeRE.FindStringSubmatch(page)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}
	rcpURL, err := parser.ResolveURL(ctx.MatchedContentURL, matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid rcp url: %w", err)
	}

	rcpPage, err := util.FetchPage(ctx.Context, ctx.Client(), rcpURL, map[string]string{
		"Referer": ctx.MatchedContentURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rcp frame: %w", err)
	}
	matches = prorcpRE.FindStringSubmatch(rcpPage)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}
	prorcpURL, err := parser.ResolveAgainstOrigin(rcpURL, matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid prorcp url: %w", err)
	}

	prorcpPage, err := util.FetchPage(ctx.Context, ctx.Client(), prorcpURL, map[string]string{
		"Referer": rcpURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prorcp script: %w", err)
	}
	matches = fileRE.FindStringSubmatch(prorcpPage)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}

	origin, err := parser.ResolveAgainstOrigin(prorcpURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player origin: %w", err)
	}
	streams := collectMirrors(ctx, matches[1], origin)
	if len(streams) == 0 {
		return nil, util.ErrNoStreamsFound
	}
	return streams, nil
}

// collectMirrors splits the raw file value into its mirror candidates
// and emits one stream per candidate that survives cleanup. A broken
// mirror only drops itself.
func collectMirrors(ctx *models.ResolveContext, rawFile string, origin string) []*models.RawStream {
	var streams []*models.RawStream
	for i, candidate := range strings.Split(rawFile, " or ") {
		cleaned := stripPlaceholders(strings.TrimSpace(candidate))
		if _, err := url.ParseRequestURI(cleaned); err != nil || !strings.HasPrefix(cleaned, "http") {
			zap.S().Debugf("vidsrc: dropping mirror %q: not a playable url", candidate)
			continue
		}
		stream := ctx.NewStream(cleaned)
		stream.IsM3U8 = strings.Contains(cleaned, ".m3u8")
		stream.Headers = map[string]string{
			"Referer": origin,
		}
		if i > 0 {
			stream.Source = models.BackupSource(ctx.Extractor.Name)
		}
		streams = append(streams, stream)
	}
	return streams
}

// stripPlaceholders drops the {v1}-style junk segments the player
// script leaves inside the URL, along with the slash each one owns.
func stripPlaceholders(rawURL string) string {
	return placeholderRE.ReplaceAllString(rawURL, "")
}
