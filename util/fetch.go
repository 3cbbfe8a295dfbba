package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"unembed/models"
	"unembed/util/networking"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const (
	ChromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// embed pages and player payloads are small; anything bigger is noise
	maxBodySize = 10 << 20
)

// NewRequest builds a request with browser-like default headers.
func NewRequest(
	ctx context.Context,
	method string,
	rawURL string,
	body io.Reader,
	headers map[string]string,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", ChromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// FetchPage GETs a page and returns its body as a string.
func FetchPage(
	ctx context.Context,
	client models.HTTPClient,
	rawURL string,
	headers map[string]string,
) (string, error) {
	body, err := FetchBytes(ctx, client, rawURL, headers)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func FetchBytes(
	ctx context.Context,
	client models.HTTPClient,
	rawURL string,
	headers map[string]string,
) ([]byte, error) {
	if client == nil {
		client = networking.GetDefaultHTTPClient()
	}
	req, err := NewRequest(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	zap.S().Debugf("fetched %s (%s)", rawURL, humanize.IBytes(uint64(len(body))))
	return body, nil
}

// FetchDocument GETs a page and parses it for DOM queries.
func FetchDocument(
	ctx context.Context,
	client models.HTTPClient,
	rawURL string,
	headers map[string]string,
) (*goquery.Document, error) {
	body, err := FetchBytes(ctx, client, rawURL, headers)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// FetchJSON GETs a URL and decodes the JSON response into out.
func FetchJSON(
	ctx context.Context,
	client models.HTTPClient,
	rawURL string,
	headers map[string]string,
	out any,
) error {
	if client == nil {
		client = networking.GetDefaultHTTPClient()
	}
	req, err := NewRequest(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch json: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	decoder := sonic.ConfigFastest.NewDecoder(io.LimitReader(resp.Body, maxBodySize))
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}
	return nil
}

// PostJSON POSTs a JSON payload and decodes the JSON response into out.
func PostJSON(
	ctx context.Context,
	client models.HTTPClient,
	rawURL string,
	payload any,
	headers map[string]string,
	out any,
) error {
	if client == nil {
		client = networking.GetDefaultHTTPClient()
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	req, err := NewRequest(ctx, http.MethodPost, rawURL, strings.NewReader(string(body)), headers)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post json: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	decoder := sonic.ConfigFastest.NewDecoder(io.LimitReader(resp.Body, maxBodySize))
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}
	return nil
}

// PostForm POSTs urlencoded form data and returns the body as a string.
func PostForm(
	ctx context.Context,
	client models.HTTPClient,
	rawURL string,
	form url.Values,
	headers map[string]string,
) (string, error) {
	if client == nil {
		client = networking.GetDefaultHTTPClient()
	}
	req, err := NewRequest(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()), headers)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to post form: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

func checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrUnavailable
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		return fmt.Errorf("server returned status code: %d", resp.StatusCode)
	}
}
