package deobf

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// The p,a,c,k,e,d packer replaces every word of the original source
// with its index encoded in base a (base 62 at most: 0-9, a-z, A-Z),
// shipping the dictionary as a '|'-separated list. Unpacking rebuilds
// the source by substituting each token back.

const packedMarker = "eval(function(p,a,c,k,e,"

const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	packedArgsRE = regexp.MustCompile(`(?s)\}\s*\(\s*'(.*)'\s*,\s*(\d+)\s*,\s*(\d+)\s*,\s*'([^']*)'\s*\.split\('\|'\)`)
	wordRE       = regexp.MustCompile(`\b\w+\b`)
)

// Detect reports whether the script contains a packed block.
func Detect(script string) bool {
	return strings.Contains(script, packedMarker)
}

// Unpack reverses the first packed block found in script and returns
// the reconstructed source. Input without a packed block is a
// structural mismatch, so unpacked output fed back in errors out
// instead of being mangled twice.
func Unpack(script string) (string, error) {
	if !Detect(script) {
		return "", errors.New("no packed script found")
	}
	matches := packedArgsRE.FindStringSubmatch(script)
	if matches == nil {
		return "", errors.New("malformed packed script arguments")
	}
	payload := matches[1]
	radix, err := strconv.Atoi(matches[2])
	if err != nil || radix < 2 || radix > 62 {
		return "", errors.Errorf("unsupported packer radix %q", matches[2])
	}
	count, err := strconv.Atoi(matches[3])
	if err != nil {
		return "", errors.Errorf("invalid keyword count %q", matches[3])
	}
	keywords := strings.Split(matches[4], "|")
	if count > len(keywords) {
		return "", errors.Errorf("keyword list too short: want %d, have %d", count, len(keywords))
	}

	payload = strings.ReplaceAll(payload, `\\`, `\`)
	payload = strings.ReplaceAll(payload, `\'`, `'`)

	symbols := make(map[string]string, count)
	for i := range count {
		token := encodeBaseN(i, radix)
		if keywords[i] != "" {
			symbols[token] = keywords[i]
		} else {
			symbols[token] = token
		}
	}

	unpacked := wordRE.ReplaceAllStringFunc(payload, func(token string) string {
		if replacement, ok := symbols[token]; ok {
			return replacement
		}
		return token
	})
	return unpacked, nil
}

// UnpackAll unpacks every packed block in the text and concatenates
// the reconstructed sources.
func UnpackAll(text string) string {
	var bodies []string
	for _, chunk := range splitPackedChunks(text) {
		if body, err := Unpack(chunk); err == nil {
			bodies = append(bodies, body)
		}
	}
	return strings.Join(bodies, "\n")
}

func splitPackedChunks(text string) []string {
	var chunks []string
	for {
		start := strings.Index(text, packedMarker)
		if start < 0 {
			return chunks
		}
		rest := text[start:]
		next := strings.Index(rest[len(packedMarker):], packedMarker)
		if next < 0 {
			chunks = append(chunks, rest)
			return chunks
		}
		chunks = append(chunks, rest[:len(packedMarker)+next])
		text = rest[len(packedMarker)+next:]
	}
}

// encodeBaseN mirrors how the packer encodes indices: Number.toString
// semantics up to base 36, the 0-9a-zA-Z alphabet past that.
func encodeBaseN(value int, radix int) string {
	if radix <= 36 {
		return strconv.FormatInt(int64(value), radix)
	}
	if value == 0 {
		return "0"
	}
	var builder strings.Builder
	for value > 0 {
		builder.WriteByte(base62Alphabet[value%radix])
		value /= radix
	}
	encoded := []byte(builder.String())
	for i, j := 0, len(encoded)-1; i < j; i, j = i+1, j-1 {
		encoded[i], encoded[j] = encoded[j], encoded[i]
	}
	return string(encoded)
}
