// Package vk resolves VK video embeds from the inline player params:
// an mp4 ladder keyed by height plus an optional HLS manifest.
package vk

import (
	"fmt"
	"regexp"

	"github.com/tidwall/gjson"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
)

var (
	playerParamsRE = regexp.MustCompile(`(?s)var\s+playerParams\s*=\s*(\{.+?\});`)

	ladderHeights = []string{"144", "240", "360", "480", "720", "1080", "1440", "2160"}
)

var Extractor = &models.Extractor{
	Name:     "VK",
	CodeName: "vk",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"vk.com", "vk.ru", "vkvideo.ru"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.|m\.)?(?:vk\.(?:com|ru)|vkvideo\.ru)/video_ext\.php\?(?:[^#\s]*&)?oid=(?P<oid>-?\d+)&(?:[^#\s]*&)?id=(?P<id>\d+)`),
		regexp.MustCompile(`https?://(?:www\.|m\.)?(?:vk\.(?:com|ru)|vkvideo\.ru)/video(?P<oid>-?\d+)_(?P<id>\d+)`),
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
		headers["Cookie"] = util.CookieHeader(cookies)
	}
	page, err := util.FetchPage(ctx.Context, ctx.Client(), ctx.MatchedContentURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	matches := playerParamsRE.FindStringSubmatch(page)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}
	params := gjson.Get(matches[1], "params.0")
	if !params.Exists() {
		return nil, util.ErrSourceNotFound
	}

	var streams []*models.RawStream
	for _, height := range ladderHeights {
		videoURL := params.Get("url" + height).String()
		if videoURL == "" {
			continue
		}
		stream := ctx.NewStream(util.FixURL(videoURL))
		stream.Quality = height + "p"
		streams = append(streams, stream)
	}
	if hlsURL := params.Get("hls").String(); hlsURL != "" {
		stream := ctx.NewStream(util.FixURL(hlsURL))
		stream.IsM3U8 = true
		streams = append(streams, stream)
	}

	if len(streams) == 0 {
		return nil, util.ErrNoStreamsFound
	}
	return streams, nil
}
