// Package streamsb resolves the StreamSB host family. The sources API
// wants the content id wrapped in a pipe-delimited marker string and
// hex encoded into the request path.
package streamsb

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

var Extractor = &models.Extractor{
	Name:     "StreamSB",
	CodeName: "streamsb",
	Category: enums.ExtractorCategoryVideo,
	Host: []string{
		"streamsb.net",
		"sbplay.org",
		"sbfull.com",
		"ssbstream.net",
	},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:streamsb\.(?:net|com)|sbplay2?\.(?:org|com|xyz)|sbfull\.com|ssbstream\.net|sbthe\.com|sbbrisk\.com|sbspeed\.com)/(?:e|d|v|embed-)/?(?P<id>\w+)`),
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
	wrapped := hex.EncodeToString([]byte("||" + ctx.MatchedContentID + "||||streamsb"))
	sourcesURL, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/sources50/"+wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sources url: %w", err)
	}

	body, err := util.FetchPage(ctx.Context, ctx.Client(), sourcesURL, map[string]string{
		"watchsb": "sbstream",
		"Referer": ctx.MatchedContentURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sources: %w", err)
	}
	data := gjson.Get(body, "stream_data")
	if !data.Exists() {
		return nil, util.ErrSourceNotFound
	}

	var streams []*models.RawStream
	if file := data.Get("file").String(); file != "" {
		stream := ctx.NewStream(util.FixURL(file))
		stream.IsM3U8 = strings.Contains(file, ".m3u8")
		streams = append(streams, stream)
	}
	if backup := data.Get("backup").String(); backup != "" {
		stream := models.NewRawStream(
			models.BackupSource(ctx.Extractor.Name),
			util.FixURL(backup),
		)
		stream.IsM3U8 = strings.Contains(backup, ".m3u8")
		streams = append(streams, stream)
	}

	if len(streams) == 0 {
		return nil, util.ErrNoStreamsFound
	}
	return streams, nil
}
