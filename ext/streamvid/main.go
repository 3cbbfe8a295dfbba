package streamvid

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
	srcRE  = regexp.MustCompile(`src:\s*"([^"]+)"`)
	fileRE = regexp.MustCompile(`file:\s*"([^"]+)"`)
)

var Extractor = &models.Extractor{
	Name:     "StreamVid",
	CodeName: "streamvid",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"streamvid.net"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?streamvid\.(?:net|su)/(?:embed-|d/)?(?P<id>\w+)`),
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

	unpacked := deobf.UnpackAll(page)
	var streamURL string
	if matches := srcRE.FindStringSubmatch(unpacked); matches != nil {
		streamURL = matches[1]
	} else if matches := fileRE.FindStringSubmatch(unpacked); matches != nil {
		streamURL = matches[1]
	}
	if streamURL == "" {
		return nil, util.ErrSourceNotFound
	}
	stream := ctx.NewStream(util.FixURL(streamURL))
	stream.IsM3U8 = strings.Contains(streamURL, ".m3u8")
	return []*models.RawStream{stream}, nil
}
