// Package sendcm resolves Send.cm file embeds. The page carries a
// download form; posting it yields the file URL in a redirect that
// must be captured instead of followed.
package sendcm

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"unembed/enums"
	"unembed/models"
	"unembed/util"
	"unembed/util/parser"
)

var Extractor = &models.Extractor{
	Name:     "Send.cm",
	CodeName: "sendcm",
	Category: enums.ExtractorCategoryVideo,
	Host:     []string{"send.cm", "send.now"},
	URLPatterns: []*regexp.Regexp{
		regexp.MustCompile(`https?://(?:www\.)?send\.(?:cm|now)/(?:embed/|d/)?(?P<id>\w+)`),
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
	doc, err := util.FetchDocument(ctx.Context, ctx.Client(), ctx.MatchedContentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	form := doc.Find(`form[name="F1"]`).First()
	if form.Length() == 0 {
		form = doc.Find(`form:has(input[name="op"])`).First()
	}
	if form.Length() == 0 {
		return nil, util.ErrSourceNotFound
	}
	action, _ := form.Attr("action")
	actionURL, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, action)
	if err != nil {
		return nil, fmt.Errorf("invalid form action: %w", err)
	}

	fields := url.Values{}
	form.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name, _ := input.Attr("name")
		value, _ := input.Attr("value")
		if name != "" {
			fields.Set(name, value)
		}
	})
	if fields.Get("id") == "" {
		fields.Set("id", ctx.MatchedContentID)
	}

	req, err := util.NewRequest(ctx.Context, http.MethodPost, actionURL,
		strings.NewReader(fields.Encode()), map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Referer":      ctx.MatchedContentURL,
		})
	if err != nil {
		return nil, err
	}
	location, err := util.GetLocationHeader(req)
	if err != nil {
		return nil, fmt.Errorf("download form yielded no redirect: %w", err)
	}
	streamURL, err := parser.ResolveAgainstOrigin(ctx.MatchedContentURL, location)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect target: %w", err)
	}

	stream := ctx.NewStream(streamURL)
	stream.Headers = map[string]string{
		"Referer": ctx.MatchedContentURL,
	}
	return []*models.RawStream{stream}, nil
}
