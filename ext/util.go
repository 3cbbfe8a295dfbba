package ext

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"unembed/models"
	"unembed/util/networking"
)

const maxRedirects = 5

var clientMu sync.Mutex

// CtxsByURL matches a URL against the catalog and builds one resolve
// context per descriptor that should fire. Redirect descriptors are
// chased first, bounded by maxRedirects. The first matching descriptor
// wins; when it is composite, every matching descriptor fires in
// catalog order. No match returns (nil, nil).
func CtxsByURL(ctx context.Context, rawURL string) ([]*models.ResolveContext, error) {
	currentURL := rawURL
	for redirectCount := 0; redirectCount <= maxRedirects; redirectCount++ {
		extractor, pattern, matches := matchFirst(currentURL)
		if extractor == nil {
			return nil, nil
		}

		if extractor.IsRedirect {
			response, err := extractor.Run(newResolveContext(ctx, extractor, pattern, matches))
			if err != nil {
				return nil, fmt.Errorf("failed to resolve redirect: %w", err)
			}
			if response.URL == "" {
				return nil, fmt.Errorf("redirect resolver returned no url")
			}
			currentURL = response.URL
			continue
		}

		if !extractor.IsComposite {
			return []*models.ResolveContext{
				newResolveContext(ctx, extractor, pattern, matches),
			}, nil
		}
		var ctxs []*models.ResolveContext
		for _, candidate := range List {
			candidatePattern, candidateMatches := candidate.MatchURL(currentURL)
			if candidateMatches == nil {
				continue
			}
			ctxs = append(ctxs, newResolveContext(ctx, candidate, candidatePattern, candidateMatches))
		}
		return ctxs, nil
	}
	return nil, fmt.Errorf("exceeded maximum number of redirects (%d)", maxRedirects)
}

// CtxByURL is CtxsByURL for callers that only care about the winning
// descriptor.
func CtxByURL(ctx context.Context, rawURL string) (*models.ResolveContext, error) {
	ctxs, err := CtxsByURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if len(ctxs) == 0 {
		return nil, nil
	}
	return ctxs[0], nil
}

func matchFirst(rawURL string) (*models.Extractor, *regexp.Regexp, []string) {
	for _, extractor := range List {
		if pattern, matches := extractor.MatchURL(rawURL); matches != nil {
			return extractor, pattern, matches
		}
	}
	return nil, nil, nil
}

func newResolveContext(
	ctx context.Context,
	extractor *models.Extractor,
	pattern *regexp.Regexp,
	matches []string,
) *models.ResolveContext {
	groups := make(map[string]string)
	for i, name := range pattern.SubexpNames() {
		if name != "" && i < len(matches) {
			groups[name] = matches[i]
		}
	}
	groups["match"] = matches[0]

	ensureClient(extractor)
	return &models.ResolveContext{
		Context:           ctx,
		MatchedContentID:  groups["id"],
		MatchedContentURL: groups["match"],
		MatchedGroups:     groups,
		Extractor:         extractor,
	}
}

// ensureClient attaches the extractor's configured HTTP client once.
// A client planted beforehand (tests, embedders) is left alone.
func ensureClient(extractor *models.Extractor) {
	clientMu.Lock()
	defer clientMu.Unlock()
	if extractor.Client == nil {
		extractor.Client = networking.GetExtractorHTTPClient(extractor)
	}
}
