// Package gogocdn resolves the gogo player network. The embed page
// carries AES-encrypted request parameters in a data-value attribute;
// those are decrypted, re-signed and sent to encrypt-ajax.php, whose
// response decrypts to the actual source lists.
package gogocdn

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
	"unembed/util/parser"
)

// fixed key material shipped with the player
var (
	ajaxKey    = []byte("37911490979715163134003223491201")
	sourcesKey = []byte("54674138327930866480207815084989")
	aesIV      = []byte("3134003223491201")
)

var dataValueRE = regexp.MustCompile(`data-value="(.+?)"`)

var Extractor = &models.Extractor{
	Name:     "GogoCDN",
	CodeName: "gogocdn",
	Category: enums.ExtractorCategoryVideo,
	Host: []string{
		"goload.pro",
		"embtaku.pro",
		"playtaku.net",
		"s3taku.com",
	},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?(?:goload|gogohd|embtaku|playtaku|gotaku1|anihdplay|playgo1|gembedhd|s3taku|goone)\.(?:pro|net|com|cc|io|online)/(?:streaming|embedplus|load|loadserver)\.php\?(?:[^#\s]*&)?id=(?P<id>[^&#\s]+)`),
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

type sourcesResponse struct {
	Source []sourceEntry `json:"source"`
	Backup []sourceEntry `json:"source_bk"`
}

type sourceEntry struct {
	File  string `json:"file"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

func GetVideo(ctx *models.ResolveContext) ([]*models.RawStream, error) {
	contentID := ctx.MatchedContentID
	page, err := util.FetchPage(ctx.Context, ctx.Client(), ctx.MatchedContentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	matches := dataValueRE.FindStringSubmatch(page)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}

	ajaxParams, err := buildAjaxParams(matches[1], contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to build ajax params: %w", err)
	}
	origin, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page origin: %w", err)
	}

	var envelope struct {
		Data string `json:"data"`
	}
	ajaxURL := strings.TrimSuffix(origin, "/") + "/encrypt-ajax.php?" + ajaxParams
	err = util.FetchJSON(ctx.Context, ctx.Client(), ajaxURL, map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Referer":          ctx.MatchedContentURL,
	}, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ajax response: %w", err)
	}

	decrypted, err := decryptBase64(envelope.Data, sourcesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt sources: %w", err)
	}
	var sources sourcesResponse
	if err := sonic.Unmarshal(decrypted, &sources); err != nil {
		return nil, fmt.Errorf("sources are not json: %w", err)
	}

	streams := collectStreams(ctx, sources.Source, ctx.Extractor.Name, origin)
	streams = append(streams, collectStreams(
		ctx, sources.Backup,
		models.BackupSource(ctx.Extractor.Name),
		origin,
	)...)
	if len(streams) == 0 {
		return nil, util.ErrNoStreamsFound
	}
	return streams, nil
}

// buildAjaxParams decrypts the page token and re-encrypts the content
// id the way the player script does before calling encrypt-ajax.php.
func buildAjaxParams(encryptedValue string, contentID string) (string, error) {
	token, err := decryptBase64(encryptedValue, ajaxKey)
	if err != nil {
		return "", fmt.Errorf("page token: %w", err)
	}
	encryptedID, err := deobf.EncryptAESCBC([]byte(contentID), ajaxKey, aesIV)
	if err != nil {
		return "", fmt.Errorf("content id: %w", err)
	}
	return fmt.Sprintf(
		"id=%s&alias=%s&%s",
		base64.StdEncoding.EncodeToString(encryptedID),
		contentID,
		string(token),
	), nil
}

func decryptBase64(encoded string, key []byte) ([]byte, error) {
	ciphertext, err := deobf.DecodeBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	return deobf.DecryptAESCBC(ciphertext, key, aesIV)
}

// collectStreams emits one stream per source entry, expanding HLS
// masters into their variants. Mirror failures only drop that mirror.
func collectStreams(
	ctx *models.ResolveContext,
	entries []sourceEntry,
	source string,
	origin string,
) []*models.RawStream {
	var streams []*models.RawStream
	for _, entry := range entries {
		if entry.File == "" {
			continue
		}
		headers := map[string]string{
			"Referer": origin,
		}
		stream := models.NewRawStream(source, util.FixURL(entry.File))
		stream.Headers = headers
		if entry.Label != "" {
			stream.Quality = entry.Label
		}
		if !strings.Contains(entry.File, ".m3u8") {
			streams = append(streams, stream)
			continue
		}
		stream.IsM3U8 = true
		streams = append(streams, stream)

		expanded, err := parser.ParseM3U8FromURL(ctx.Context, stream.URL, &parser.Options{
			Client:  ctx.Client(),
			Headers: headers,
			Source:  source,
		})
		if err != nil {
			zap.S().Debugf("gogocdn: master expansion failed for %s: %v", stream.URL, err)
			continue
		}
		for _, variant := range expanded {
			if variant.URL == stream.URL {
				continue
			}
			streams = append(streams, variant)
		}
	}
	return streams
}
