package mixdrop

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/deobf"
	"unembed/util/parser"
)

// the delivery URL comes out of the packed player setup protocol-relative
var wurlRE = regexp.MustCompile(`MDCore\.wurl\s*=\s*"([^"]+)"`)

var Extractor = &models.Extractor{
	Name:     "MixDrop",
	CodeName: "mixdrop",
	Category: enums.ExtractorCategoryVideo,
	Host: []string{
		"mixdrop.co",
		"mixdrop.to",
		"mixdrop.ag",
		"mixdrop.club",
	},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?mixdrop\.(?:co|to|ch|ag|bz|gl|club|is|si|ms|my|ps|sb|sx|vc)/[ef]/(?P<id>\w+)`),
		regexp.MustCompile(`https?://(?:www\.)?mixdrp\.(?:co|to)/[ef]/(?P<id>\w+)`),
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
	if unpacked == "" {
		return nil, util.ErrSourceNotFound
	}
	matches := wurlRE.FindStringSubmatch(unpacked)
	if matches == nil {
		return nil, util.ErrSourceNotFound
	}
	streamURL, err := parser.ResolveURL(ctx.MatchedContentURL, matches[1])
	if err != nil {
		zap.S().Debugf("mixdrop: invalid delivery url %q: %v", matches[1], err)
		return nil, util.ErrSourceNotFound
	}

	origin, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, "/")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page origin: %w", err)
	}
	stream := ctx.NewStream(streamURL)
	stream.Headers = map[string]string{
		"Referer": origin,
	}
	return []*models.RawStream{stream}, nil
}
