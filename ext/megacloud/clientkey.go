package megacloud

import (
	"regexp"
	"strings"

	"unembed/util"
)

// The player hides a per-request client key in the embed page markup
// behind rotating obfuscation variants. Each variant gets a pattern
// with the key in a capture group; the patterns are tried in order and
// the first hit wins.
var clientKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`<meta name="_gg_fb" content="([a-zA-Z0-9]+)"`),
	regexp.MustCompile(`<!--\s+_is_th:([a-zA-Z0-9]+)\s+-->`),
	regexp.MustCompile(`window\._lk_db\s*=\s*\{[^}]+\}`),
	regexp.MustCompile(`<div\s+data-dpi="([a-zA-Z0-9]+)"`),
	regexp.MustCompile(`<script nonce="([a-zA-Z0-9]+)">`),
	regexp.MustCompile("window\\._xy_ws = ['\"`]([a-zA-Z0-9]+)['\"`]"),
}

// the split variant scatters the key across x/y/z fields that
// concatenate in that order regardless of how the page emits them
var lkDBPartPatterns = []*regexp.Regexp{
	regexp.MustCompile(`x:\s*["']([a-zA-Z0-9]+)["']`),
	regexp.MustCompile(`y:\s*["']([a-zA-Z0-9]+)["']`),
	regexp.MustCompile(`z:\s*["']([a-zA-Z0-9]+)["']`),
}

func findClientKey(page string) (string, error) {
	for _, pattern := range clientKeyPatterns {
		matches := pattern.FindStringSubmatch(page)
		if matches == nil {
			continue
		}
		if len(matches) == 1 {
			return joinSplitKey(matches[0])
		}
		return strings.Join(matches[1:], ""), nil
	}
	return "", util.ErrSourceNotFound
}

func joinSplitKey(blob string) (string, error) {
	var parts []string
	for _, pattern := range lkDBPartPatterns {
		matches := pattern.FindStringSubmatch(blob)
		if matches == nil {
			return "", util.ErrSourceNotFound
		}
		parts = append(parts, matches[1])
	}
	return strings.Join(parts, ""), nil
}
