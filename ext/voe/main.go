package voe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
)

var (
	redirectRE = regexp.MustCompile(`window\.location\.href\s*=\s*(?:'([^']+)'|"([^"]+)")`)
	hlsRE      = regexp.MustCompile(`'hls':\s*'([^']+)'`)
	letVarRE   = regexp.MustCompile(`let \w+ = '((?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{4}|[A-Za-z0-9+/]{3}=|[A-Za-z0-9+/]{2}={2}))';`)

	// junk sequences injected into the base64 payload; each collapses
	// to an underscore before the underscores themselves are dropped
	junkParts = []string{"@$", "^^", "~@", "%?", "*~", "!!", "#&", "_"}
)

var Extractor = &models.Extractor{
	Name:     "VOE",
	CodeName: "voe",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"voe.sx", "voe.to", "voe.com"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:[\w-]+\.)?voe\.(?:sx|to|com)/(?:e/)?(?P<id>[0-9a-zA-Z]+)`),
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

	// embeds on the main domains bounce to a rotating mirror
	if target := findRedirect(page); target != "" {
		zap.S().Debugf("voe: following page redirect to %s", target)
		page, err = util.FetchPage(ctx.Context, ctx.Client(), target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to follow page redirect: %w", err)
		}
	}

	for _, strategy := range []func(string) string{
		sourceFromJSONScript,
		sourceFromHLSField,
		sourceFromLetVariable,
	} {
		if streamURL := strategy(page); streamURL != "" {
			stream := ctx.NewStream(util.FixURL(streamURL))
			stream.IsM3U8 = strings.Contains(streamURL, ".m3u8")
			return []*models.RawStream{stream}, nil
		}
	}
	return nil, util.ErrSourceNotFound
}

func findRedirect(page string) string {
	matches := redirectRE.FindStringSubmatch(page)
	if matches == nil {
		return ""
	}
	if matches[1] != "" {
		return matches[1]
	}
	return matches[2]
}

// sourceFromJSONScript handles the current player: an
// application/json script whose single array element is the obfuscated
// payload.
func sourceFromJSONScript(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	var streamURL string
	doc.Find(`script[type="application/json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		text = strings.TrimPrefix(text, `["`)
		text = strings.TrimSuffix(text, `"]`)
		if text == "" {
			return true
		}
		source, err := decodePayload(text)
		if err != nil {
			zap.S().Debugf("voe: json script payload rejected: %v", err)
			return true
		}
		streamURL = source
		return false
	})
	return streamURL
}

// sourceFromHLSField handles the legacy player: an 'hls' field holding
// the URL either plain or base64 wrapped.
func sourceFromHLSField(page string) string {
	matches := hlsRE.FindStringSubmatch(page)
	if matches == nil {
		return ""
	}
	if decoded, err := deobf.DecodeBase64(matches[1]); err == nil {
		return string(decoded)
	}
	return matches[1]
}

// sourceFromLetVariable handles the intermediate player: a base64
// variable that decodes to reversed JSON with a "file" field.
func sourceFromLetVariable(page string) string {
	matches := letVarRE.FindStringSubmatch(page)
	if matches == nil {
		return ""
	}
	decoded, err := deobf.DecodeBase64(matches[1])
	if err != nil {
		return ""
	}
	var data struct {
		File string `json:"file"`
	}
	if err := sonic.Unmarshal([]byte(deobf.ReverseString(string(decoded))), &data); err != nil {
		return ""
	}
	return data.File
}

// decodePayload reverses the obfuscation chain of the json script
// player: rot13, junk removal, base64, codepoint shift by -3, string
// reversal, base64 again, then JSON with a "source" field.
func decodePayload(encoded string) (string, error) {
	step := deobf.Rot13(encoded)
	step = deobf.StripPatterns(step, junkParts)
	decoded, err := deobf.DecodeBase64(step)
	if err != nil {
		return "", fmt.Errorf("outer base64: %w", err)
	}
	shifted := deobf.ShiftCodepoints(string(decoded), -3)
	payload, err := deobf.DecodeBase64(deobf.ReverseString(shifted))
	if err != nil {
		return "", fmt.Errorf("inner base64: %w", err)
	}

	var data struct {
		Source string `json:"source"`
	}
	if err := sonic.Unmarshal(payload, &data); err != nil {
		return "", fmt.Errorf("payload is not json: %w", err)
	}
	if data.Source == "" {
		return "", util.ErrSourceNotFound
	}
	return data.Source, nil
}
