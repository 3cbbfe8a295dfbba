package models

import "context"

// Request is a single resolution request handed to the engine. Referer
// carries the page that embedded the URL, when the caller knows it.
// Hints are opaque caller preferences passed through to extractors.
type Request struct {
	URL     string
	Referer string
	Hints   map[string]string
}

type ResolveContext struct {
	Context           context.Context
	Request           *Request
	MatchedContentID  string
	MatchedContentURL string
	MatchedGroups     map[string]string
	Extractor         *Extractor
}

func (ctx *ResolveContext) NewStream(streamURL string) *RawStream {
	return NewRawStream(ctx.Extractor.Name, streamURL)
}

// Client returns the extractor's configured HTTP client. Fetch helpers
// fall back to the shared default when it is nil.
func (ctx *ResolveContext) Client() HTTPClient {
	if ctx.Extractor == nil {
		return nil
	}
	return ctx.Extractor.Client
}

func (ctx *ResolveContext) Referer() string {
	if ctx.Request == nil {
		return ""
	}
	return ctx.Request.Referer
}

func (ctx *ResolveContext) Hint(key string) string {
	if ctx.Request == nil || ctx.Request.Hints == nil {
		return ""
	}
	return ctx.Request.Hints[key]
}
