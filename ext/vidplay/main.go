// Package vidplay resolves the vidplay player family. The content id
// must be RC4-encrypted with two rotating remote keys and URL-safe
// base64 encoded before the mediainfo endpoint accepts it.
package vidplay

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"sync"

	"github.com/tidwall/gjson"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
	"unembed/util/parser"
)

// keysEndpoint serves the rotating RC4 key pair. Package variable so
// tests can point it at a local server.
var keysEndpoint = "https://raw.githubusercontent.com/Ciarands/vidsrc-keys/main/keys.json"

// keyPair memoizes the remote keys. Cached only on success so a failed
// fetch is retried by the next call.
var keyPair = struct {
	sync.Mutex
	keys []string
}{}

var Extractor = &models.Extractor{
	Name:     "VidPlay",
	CodeName: "vidplay",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"vidplay.site", "vidplay.online", "mcloud.to"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:vidplay\.(?:site|online|lol)|mcloud\.to|vid2v11\.site)/e/(?P<id>[\w-]+)`),
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
	keys, err := remoteKeys(ctx)
	if err != nil {
		return nil, err
	}
	encodedID, err := encodeContentID(ctx.MatchedContentID, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content id: %w", err)
	}

	origin, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve embed origin: %w", err)
	}
	mediaURL := origin + "mediainfo/" + encodedID
	if parsed, err := url.Parse(ctx.MatchedContentURL); err == nil && parsed.RawQuery != "" {
		mediaURL += "?" + parsed.RawQuery
	}

	body, err := util.FetchPage(ctx.Context, ctx.Client(), mediaURL, map[string]string{
		"Referer":          ctx.MatchedContentURL,
		"X-Requested-With": "XMLHttpRequest",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mediainfo: %w", err)
	}

	result := gjson.Get(body, "result")
	if !result.IsObject() {
		// the endpoint answers a bare numeric code when the encoded
		// id is stale or the video is gone
		return nil, util.ErrUnavailable
	}

	subtitles := collectSubtitles(result.Get("tracks"))
	var streams []*models.RawStream
	result.Get("sources").ForEach(func(_ gjson.Result, entry gjson.Result) bool {
		file := entry.Get("file").String()
		if file == "" {
			return true
		}
		stream := ctx.NewStream(util.FixURL(file))
		stream.IsM3U8 = true
		stream.Subtitles = subtitles
		stream.Headers = map[string]string{
			"Referer": origin,
		}
		streams = append(streams, stream)
		return true
	})

	if len(streams) == 0 {
		return nil, util.ErrNoStreamsFound
	}
	return streams, nil
}

// encodeContentID applies the player's id transform: RC4 with each
// remote key in order, then URL-safe base64.
func encodeContentID(contentID string, keys []string) (string, error) {
	data := []byte(contentID)
	for _, key := range keys {
		encrypted, err := deobf.RC4Bytes([]byte(key), data)
		if err != nil {
			return "", err
		}
		data = encrypted
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

func remoteKeys(ctx *models.ResolveContext) ([]string, error) {
	keyPair.Lock()
	defer keyPair.Unlock()

	if keyPair.keys == nil {
		var keys []string
		err := util.FetchJSON(ctx.Context, ctx.Client(), keysEndpoint, nil, &keys)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch key pair: %w", err)
		}
		if len(keys) < 2 {
			return nil, util.ErrKeysUnavailable
		}
		keyPair.keys = keys
	}
	return keyPair.keys, nil
}

func collectSubtitles(tracks gjson.Result) []*models.SubtitleTrack {
	var subtitles []*models.SubtitleTrack
	tracks.ForEach(func(_ gjson.Result, track gjson.Result) bool {
		if track.Get("kind").String() != "captions" {
			return true
		}
		file := track.Get("file").String()
		if file == "" {
			return true
		}
		subtitles = append(subtitles, models.NewSubtitleTrack(track.Get("label").String(), file))
		return true
	})
	return subtitles
}
