package megacloud

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"testing"

	"unembed/util"
)

const (
	testClientKey = "aTo3pXb6HC4BWKuUWyGmQGevLdDxGYeR"
	testRemoteKey = "Xk29fPqLm48RtUvWyZaB7cDeFgHiJ0Sn"
)

// applyLayer is the encrypting counterpart of undoLayer: substitution,
// columnar transposition, then the seeded character shift.
func applyLayer(data []byte, layerKey string) []byte {
	shuffled := shuffledCharset(layerKey)
	substituted := make([]byte, len(data))
	for i, b := range data {
		if b < charsetBase || b >= charsetBase+charsetSize {
			substituted[i] = b
			continue
		}
		substituted[i] = shuffled[b-charsetBase]
	}

	columns := len(layerKey)
	rows := (len(substituted) + columns - 1) / columns
	grid := make([]byte, rows*columns)
	for i := range grid {
		grid[i] = ' '
	}
	copy(grid, substituted)

	order := make([]int, columns)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return layerKey[order[a]] < layerKey[order[b]]
	})

	transposed := make([]byte, 0, len(grid))
	for _, column := range order {
		for row := 0; row < rows; row++ {
			transposed = append(transposed, grid[row*columns+column])
		}
	}

	seed := hash31(layerKey)
	for i, b := range transposed {
		offset := seededRand(&seed, charsetSize)
		transposed[i] = byte((int(b-charsetBase)+offset)%charsetSize) + charsetBase
	}
	return transposed
}

// encryptSources builds a payload the player would serve, so the full
// decrypt path can be driven without captured fixtures.
func encryptSources(payload string, clientKey string, remoteKey string) string {
	data := []byte(fmt.Sprintf("%04d", len(payload)) + payload)
	derivedKey := deriveKey(remoteKey, clientKey)
	for layer := 1; layer <= decryptLayers; layer++ {
		data = applyLayer(data, derivedKey+strconv.Itoa(layer))
	}
	return base64.StdEncoding.EncodeToString(data)
}

func TestDecryptSourcesRoundTrip(t *testing.T) {
	payload := `[{"file":"https://cdn.example/hls/master.m3u8","type":"hls"}]`
	encoded := encryptSources(payload, testClientKey, testRemoteKey)

	got, err := decryptSources(encoded, testClientKey, testRemoteKey)
	if err != nil {
		t.Fatalf("decryptSources() error = %v", err)
	}
	if got != payload {
		t.Errorf("decryptSources() = %q, want %q", got, payload)
	}
}

func TestDecryptSourcesWrongClientKey(t *testing.T) {
	payload := `[{"file":"https://cdn.example/hls/master.m3u8"}]`
	encoded := encryptSources(payload, testClientKey, testRemoteKey)

	got, err := decryptSources(encoded, testRemoteKey, testRemoteKey)
	if err == nil && got == payload {
		t.Error("decryptSources() with the wrong client key recovered the payload")
	}
}

func TestDecryptSourcesEmptyPayload(t *testing.T) {
	if _, err := decryptSources("", testClientKey, testRemoteKey); !errors.Is(err, util.ErrDecodeFailed) {
		t.Errorf("decryptSources(\"\") error = %v, want ErrDecodeFailed", err)
	}
}

func TestDecryptSourcesNotBase64(t *testing.T) {
	if _, err := decryptSources("!!!", testClientKey, testRemoteKey); err == nil {
		t.Error("decryptSources() should reject payloads that are not base64")
	}
}

func TestUntranspose(t *testing.T) {
	// key "ba" sorts its columns as [1 0]: the first half of the input
	// fills column 1, the second half column 0
	got := untranspose([]byte("badc"), "ba")
	if string(got) != "dbca" {
		t.Errorf("untranspose() = %q, want %q", got, "dbca")
	}
}

func TestShuffledCharsetIsPermutation(t *testing.T) {
	charset := shuffledCharset(testClientKey)
	if len(charset) != charsetSize {
		t.Fatalf("shuffledCharset() length = %d, want %d", len(charset), charsetSize)
	}
	var seen [256]bool
	for _, b := range charset {
		if b < charsetBase || b >= charsetBase+charsetSize {
			t.Fatalf("shuffledCharset() byte %d outside printable charset", b)
		}
		if seen[b] {
			t.Fatalf("shuffledCharset() repeats byte %d", b)
		}
		seen[b] = true
	}
	if string(charset) != string(shuffledCharset(testClientKey)) {
		t.Error("shuffledCharset() is not deterministic")
	}
}

func TestDeriveKey(t *testing.T) {
	key := deriveKey(testRemoteKey, testClientKey)
	if key == "" {
		t.Fatal("deriveKey() returned an empty key")
	}
	if len(key) > 96+32 {
		t.Errorf("deriveKey() length = %d, want at most %d", len(key), 96+32)
	}
	for i := 0; i < len(key); i++ {
		if key[i] < charsetBase || key[i] >= charsetBase+charsetSize {
			t.Fatalf("deriveKey() byte %d at %d outside printable charset", key[i], i)
		}
	}
	if key != deriveKey(testRemoteKey, testClientKey) {
		t.Error("deriveKey() is not deterministic")
	}
}
