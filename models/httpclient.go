package models

import "net/http"

// HTTPClient lets extractors run through the default client, a
// per-extractor proxied client or the edge proxy interchangeably.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
