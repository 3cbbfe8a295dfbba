// Package megacloud resolves the megacloud / rapid-cloud player family.
// The same embed infrastructure serves two player generations with
// different source encryption, so both descriptors are composite: a
// matching URL fires both and the union of their results survives.
package megacloud

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
	"unembed/util/parser"
)

var embedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://(?:www\.)?(?:megacloud\.(?:tv|blog|club)|rapid-cloud\.co|rabbitstream\.net)/(?:ajax/)?(?P<prefix>embed-\d+)(?:/v\d+)?/e-1/(?P<id>[\w-]+)`),
}

var Extractor = &models.Extractor{
	Name:        "MegaCloud",
	CodeName:    "megacloud",
	Category:    enums.ExtractorCategoryVideo,
	Host:        []string{"megacloud.tv", "megacloud.blog", "rabbitstream.net"},
	URLPatterns: embedPatterns,
	IsComposite: true,

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

var RapidCloudExtractor = &models.Extractor{
	Name:        "RapidCloud",
	CodeName:    "rapidcloud",
	Category:    enums.ExtractorCategoryVideo,
	Host:        []string{"rapid-cloud.co"},
	URLPatterns: embedPatterns,
	IsComposite: true,

	Run: func(ctx *models.ResolveContext) (*models.ExtractorResponse, error) {
		streams, err := GetVideoLegacy(ctx)
		if err != nil {
			return nil, err
		}
		return &models.ExtractorResponse{
			Streams: streams,
		}, nil
	},
}

// GetVideo runs the current player generation: scrape the client key
// from the embed page, call getSources with it, then undo the layered
// encryption with the remote key.
func GetVideo(ctx *models.ResolveContext) ([]*models.RawStream, error) {
	origin, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve embed origin: %w", err)
	}
	base := strings.TrimSuffix(origin, "/") + "/" + ctx.MatchedGroups["prefix"] + "/v3/e-1/"

	pageHeaders := map[string]string{}
	if referer := ctx.Referer(); referer != "" {
		pageHeaders["Referer"] = referer
	}
	page, err := util.FetchPage(ctx.Context, ctx.Client(), base+ctx.MatchedContentID+"?z=", pageHeaders)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch embed page: %w", err)
	}
	clientKey, err := findClientKey(page)
	if err != nil {
		return nil, fmt.Errorf("client key not found: %w", err)
	}

	body, err := util.FetchPage(ctx.Context, ctx.Client(),
		base+"getSources?id="+ctx.MatchedContentID+"&_k="+clientKey,
		map[string]string{
			"X-Requested-With": "XMLHttpRequest",
			"Referer":          ctx.MatchedContentURL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sources: %w", err)
	}

	sources := gjson.Get(body, "sources")
	sourcesJSON := sources.Raw
	if gjson.Get(body, "encrypted").Bool() {
		megaKey, err := remoteKey(ctx, "mega")
		if err != nil {
			return nil, err
		}
		sourcesJSON, err = decryptSources(sources.String(), clientKey, megaKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt sources: %w", err)
		}
	}
	return collectStreams(ctx, sourcesJSON, gjson.Get(body, "tracks"))
}

// GetVideoLegacy runs the previous player generation, which ships its
// sources as an OpenSSL-salted AES blob and needs no client key.
func GetVideoLegacy(ctx *models.ResolveContext) ([]*models.RawStream, error) {
	origin, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve embed origin: %w", err)
	}
	sourcesURL := strings.TrimSuffix(origin, "/") +
		"/ajax/" + ctx.MatchedGroups["prefix"] + "-v2/getSources?id=" + ctx.MatchedContentID

	body, err := util.FetchPage(ctx.Context, ctx.Client(), sourcesURL, map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Referer":          ctx.MatchedContentURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sources: %w", err)
	}

	sources := gjson.Get(body, "sources")
	sourcesJSON := sources.Raw
	if gjson.Get(body, "encrypted").Bool() {
		rapidKey, err := remoteKey(ctx, "rapid")
		if err != nil {
			return nil, err
		}
		ciphertext, err := deobf.DecodeBase64(sources.String())
		if err != nil {
			return nil, fmt.Errorf("sources are not base64: %w", err)
		}
		decrypted, err := deobf.DecryptSaltedAES(ciphertext, []byte(rapidKey))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt sources: %w", err)
		}
		sourcesJSON = string(decrypted)
	}
	return collectStreams(ctx, sourcesJSON, gjson.Get(body, "tracks"))
}

// collectStreams emits one stream per source file, expands HLS masters
// into their quality variants and attaches the caption tracks.
func collectStreams(
	ctx *models.ResolveContext,
	sourcesJSON string,
	tracks gjson.Result,
) ([]*models.RawStream, error) {
	subtitles := collectSubtitles(tracks)

	var streams []*models.RawStream
	gjson.Parse(sourcesJSON).ForEach(func(_ gjson.Result, entry gjson.Result) bool {
		file := entry.Get("file").String()
		if file == "" {
			return true
		}
		stream := ctx.NewStream(util.FixURL(file))
		stream.Subtitles = subtitles
		if !strings.Contains(file, ".m3u8") {
			streams = append(streams, stream)
			return true
		}
		stream.IsM3U8 = true
		streams = append(streams, stream)

		expanded, err := parser.ParseM3U8FromURL(ctx.Context, stream.URL, &parser.Options{
			Client: ctx.Client(),
			Source: ctx.Extractor.Name,
		})
		if err != nil {
			zap.S().Debugf("%s: master expansion failed for %s: %v",
				ctx.Extractor.CodeName, stream.URL, err)
			return true
		}
		for _, variant := range expanded {
			if variant.URL == stream.URL {
				continue
			}
			variant.Subtitles = subtitles
			streams = append(streams, variant)
		}
		return true
	})

	if len(streams) == 0 {
		return nil, util.ErrNoStreamsFound
	}
	return streams, nil
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
		subtitle := models.NewSubtitleTrack(track.Get("label").String(), file)
		subtitle.Language = track.Get("label").String()
		subtitles = append(subtitles, subtitle)
		return true
	})
	return subtitles
}
