package speedfiles

import (
	"fmt"
	"net/url"
	"regexp"

	"go.uber.org/zap"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
)

var candidateRE = regexp.MustCompile(`(?:var|let|const) \w+ = ["']((?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{4}|[A-Za-z0-9+/]{3}=|[A-Za-z0-9+/]{2}={2}))["'];`)

var Extractor = &models.Extractor{
	Name:     "SpeedFiles",
	CodeName: "speedfiles",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"speedfiles.net"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?speedfiles\.net/(?P<id>[0-9a-zA-Z]+)`),
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

	// every base64 looking script variable is a candidate; only the
	// real payload survives the whole decode ladder
	for _, match := range candidateRE.FindAllStringSubmatch(page, -1) {
		streamURL, err := DecodeURL(match[1])
		if err != nil {
			zap.S().Debugf("speedfiles: candidate rejected: %v", err)
			continue
		}
		return []*models.RawStream{ctx.NewStream(streamURL)}, nil
	}
	return nil, util.ErrSourceNotFound
}

// DecodeURL reverses the speedfiles ladder: base64, case flip and
// reversal, base64, reversal, hex pairs minus 3, case flip and
// reversal, base64.
func DecodeURL(encoded string) (string, error) {
	decoded, err := deobf.DecodeBase64(encoded)
	if err != nil {
		return "", fmt.Errorf("outer base64: %w", err)
	}

	step := deobf.ReverseString(deobf.SwapCase(string(decoded)))
	inner, err := deobf.DecodeBase64(step)
	if err != nil {
		return "", fmt.Errorf("middle base64: %w", err)
	}
	step = deobf.ReverseString(string(inner))

	step, err = deobf.DecodeHexPairsShift(step, 3)
	if err != nil {
		return "", fmt.Errorf("hex pairs: %w", err)
	}

	step = deobf.ReverseString(deobf.SwapCase(step))
	final, err := deobf.DecodeBase64(step)
	if err != nil {
		return "", fmt.Errorf("final base64: %w", err)
	}

	streamURL := string(final)
	if _, err := url.ParseRequestURI(streamURL); err != nil {
		return "", fmt.Errorf("decoded payload is not a url: %w", err)
	}
	return streamURL, nil
}
