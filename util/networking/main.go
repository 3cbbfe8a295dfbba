package networking

import (
	"net"
	"net/http"
	"sync"
	"time"

	"unembed/config"
	"unembed/models"

	"github.com/quic-go/quic-go/http3"
)

var (
	defaultClient     *http.Client
	defaultClientOnce sync.Once

	noRedirectClient     *http.Client
	noRedirectClientOnce sync.Once

	extractorClientsMu sync.Mutex
	extractorClients   = make(map[string]models.HTTPClient)
)

func GetDefaultHTTPClient() *http.Client {
	defaultClientOnce.Do(func() {
		defaultClient = &http.Client{
			Transport: GetBaseTransport(),
			Timeout:   config.Env.RequestTimeout,
		}
	})
	return defaultClient
}

// GetNoRedirectHTTPClient returns a client that surfaces 3xx responses
// instead of following them, for hosts whose stream URL only exists in
// a Location header.
func GetNoRedirectHTTPClient() *http.Client {
	noRedirectClientOnce.Do(func() {
		noRedirectClient = &http.Client{
			Transport: GetBaseTransport(),
			Timeout:   config.Env.RequestTimeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	})
	return noRedirectClient
}

func GetBaseTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       100,
		ResponseHeaderTimeout: 10 * time.Second,
		DisableCompression:    false,
	}
}

func GetExtractorHTTPClient(extractor *models.Extractor) models.HTTPClient {
	extractorClientsMu.Lock()
	defer extractorClientsMu.Unlock()

	if client, exists := extractorClients[extractor.CodeName]; exists {
		return client
	}

	cfg := config.GetExtractorConfig(extractor)
	if cfg == nil {
		return GetDefaultHTTPClient()
	}

	var client models.HTTPClient

	if cfg.EdgeProxyURL != "" {
		client = NewEdgeProxyClientFromConfig(cfg)
	} else {
		client = NewClientFromConfig(cfg)
	}
	extractorClients[extractor.CodeName] = client

	return client
}

func NewClientFromConfig(cfg *models.ExtractorConfig) *http.Client {
	if cfg.Impersonate {
		return NewChromeClient()
	}
	if cfg.HTTP3 {
		return &http.Client{
			Transport: &http3.Transport{},
			Timeout:   config.Env.RequestTimeout,
		}
	}
	transport := GetBaseTransport()
	if cfg.HTTPProxy != "" || cfg.HTTPSProxy != "" {
		configureProxyTransport(transport, cfg)
	}
	return &http.Client{
		Transport: transport,
		Timeout:   config.Env.RequestTimeout,
	}
}
