// Package okru resolves OK.ru (Odnoklassniki) video embeds. The player
// carries its whole configuration in a data-options attribute: an mp4
// quality ladder plus HLS and DASH manifests for adaptive playback.
package okru

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

// ladder names used by the OK.ru player, lowest first
var qualityNames = []struct {
	name    string
	quality string
}{
	{"mobile", "144p"},
	{"lowest", "240p"},
	{"low", "360p"},
	{"sd", "480p"},
	{"hd", "720p"},
	{"full", "1080p"},
	{"quad", "1440p"},
	{"ultra", "2160p"},
}

var Extractor = &models.Extractor{
	Name:     "OK.ru",
	CodeName: "okru",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"ok.ru", "odnoklassniki.ru"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.|m\.|mobile\.)?(?:ok\.ru|odnoklassniki\.ru)/(?:videoembed|video|live)/(?P<id>\d+)`),
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
	headers := map[string]string{}
	if cookies := util.GetExtractorCookies(ctx.Extractor); len(cookies) > 0 {
		// age-gated videos only render the player for logged-in sessions
		headers["Cookie"] = util.CookieHeader(cookies)
	}
	doc, err := util.FetchDocument(ctx.Context, ctx.Client(), ctx.MatchedContentURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	options, ok := doc.Find(`div[data-module="OKVideo"]`).First().Attr("data-options")
	if !ok {
		return nil, util.ErrSourceNotFound
	}
	metadata := gjson.Get(options, "flashvars.metadata").String()
	if metadata == "" {
		return nil, util.ErrSourceNotFound
	}
	if gjson.Get(metadata, "movie.notFound").Bool() {
		return nil, util.ErrUnavailable
	}

	var streams []*models.RawStream
	gjson.Get(metadata, "videos").ForEach(func(_ gjson.Result, video gjson.Result) bool {
		videoURL := video.Get("url").String()
		if videoURL == "" {
			return true
		}
		stream := ctx.NewStream(util.FixURL(videoURL))
		stream.Quality = ladderQuality(video.Get("name").String())
		streams = append(streams, stream)
		return true
	})

	if hlsURL := gjson.Get(metadata, "hlsManifestUrl").String(); hlsURL != "" {
		stream := ctx.NewStream(util.FixURL(hlsURL))
		stream.IsM3U8 = true
		streams = append(streams, stream)
	}
	if dashURL := gjson.Get(metadata, "ondemandDash").String(); dashURL != "" {
		expanded, err := parser.ParseMPDFromURL(ctx.Context, util.FixURL(dashURL), &parser.Options{
			Client: ctx.Client(),
			Source: ctx.Extractor.Name,
		})
		if err != nil {
			zap.S().Debugf("okru: dash manifest rejected: %v", err)
		} else {
			streams = append(streams, expanded...)
		}
	}

	if len(streams) == 0 {
		return nil, util.ErrNoStreamsFound
	}
	return streams, nil
}

func ladderQuality(name string) string {
	for _, entry := range qualityNames {
		if strings.EqualFold(entry.name, name) {
			return entry.quality
		}
	}
	return models.DefaultQuality
}
