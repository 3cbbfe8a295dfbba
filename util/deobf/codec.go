package deobf

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Rot13 rotates ASCII letters by 13 places. Applying it twice restores
// the input; non-letter characters pass through untouched.
func Rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		}
		return r
	}, s)
}

func ReverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// ShiftCodepoints moves every codepoint by delta (negative shifts back).
func ShiftCodepoints(s string, delta int) string {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = r + rune(delta)
	}
	return string(runes)
}

func SwapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// StripPatterns removes every occurrence of the given junk sequences,
// in order.
func StripPatterns(s string, junk []string) string {
	for _, pattern := range junk {
		s = strings.ReplaceAll(s, pattern, "")
	}
	return s
}

// DecodeBase64 decodes standard or URL-safe base64, with or without
// padding. Obfuscated players are sloppy about both.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.URLEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return decoded, nil
}

// DecodeHexPairsShift reads the input as hex byte pairs and shifts each
// byte by -delta.
func DecodeHexPairsShift(s string, delta int) (string, error) {
	if len(s)%2 != 0 {
		return "", fmt.Errorf("odd hex payload length: %d", len(s))
	}
	var builder strings.Builder
	for i := 0; i < len(s); i += 2 {
		value, err := strconv.ParseUint(s[i:i+2], 16, 16)
		if err != nil {
			return "", fmt.Errorf("invalid hex pair %q: %w", s[i:i+2], err)
		}
		builder.WriteRune(rune(int(value) - delta))
	}
	return builder.String(), nil
}

// SubstituteHexPairs maps each hex pair of the input through the given
// substitution table. Pairs missing from the table are kept verbatim.
func SubstituteHexPairs(s string, table map[string]string) (string, error) {
	if len(s)%2 != 0 {
		return "", fmt.Errorf("odd substitution payload length: %d", len(s))
	}
	var builder strings.Builder
	for i := 0; i < len(s); i += 2 {
		pair := s[i : i+2]
		if mapped, ok := table[pair]; ok {
			builder.WriteString(mapped)
		} else {
			builder.WriteString(pair)
		}
	}
	return builder.String(), nil
}

var trashCombos = buildTrashCombos()

// junk alphabet seen between base64 fragments on trash-obfuscated players
func buildTrashCombos() []string {
	chars := []string{"@", "#", "!", "^", "$"}
	var combos []string
	for _, a := range chars {
		for _, b := range chars {
			combos = append(combos, a+b)
		}
	}
	for _, a := range chars {
		for _, b := range chars {
			for _, c := range chars {
				combos = append(combos, a+b+c)
			}
		}
	}
	return combos
}

// CleanJunkedBase64 reassembles a fragment-joined base64 payload: the
// "#h" marker and "//_//" joints are dropped, base64-encoded junk
// combos are stripped, then the remainder is decoded.
func CleanJunkedBase64(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "#h")
	s = strings.ReplaceAll(s, "//_//", "")
	for _, combo := range trashCombos {
		encoded := base64.StdEncoding.EncodeToString([]byte(combo))
		s = strings.ReplaceAll(s, encoded, "")
	}
	return DecodeBase64(s)
}
