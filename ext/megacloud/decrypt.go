package megacloud

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"unembed/util"
	"unembed/util/deobf"
)

// The modern player encrypts its source list with three stacked layers,
// each keyed off a string derived from the remote key and the page's
// client key: a seeded-PRNG character shift, a columnar transposition
// and a seeded substitution alphabet. Everything operates on the 95
// printable ASCII characters.
const (
	decryptLayers = 3

	charsetBase = 32
	charsetSize = 95

	keyXORValue   = 247
	keyShiftValue = 5
)

func decryptSources(encoded string, clientKey string, remoteKey string) (string, error) {
	data, err := deobf.DecodeBase64(encoded)
	if err != nil {
		return "", fmt.Errorf("sources are not base64: %w", err)
	}
	derivedKey := deriveKey(remoteKey, clientKey)
	for layer := decryptLayers; layer >= 1; layer-- {
		data = undoLayer(data, derivedKey+strconv.Itoa(layer))
	}

	// the plaintext is length-prefixed with four decimal digits
	if len(data) < 4 {
		return "", util.ErrDecodeFailed
	}
	length, err := strconv.Atoi(string(data[:4]))
	if err != nil || length < 0 || 4+length > len(data) {
		return "", util.ErrDecodeFailed
	}
	return string(data[4 : 4+length]), nil
}

func undoLayer(data []byte, layerKey string) []byte {
	seed := hash31(layerKey)
	shifted := make([]byte, len(data))
	for i, b := range data {
		if b < charsetBase || b >= charsetBase+charsetSize {
			shifted[i] = b
			continue
		}
		offset := seededRand(&seed, charsetSize)
		shifted[i] = byte((int(b-charsetBase)-offset+charsetSize)%charsetSize) + charsetBase
	}

	transposed := untranspose(shifted, layerKey)

	shuffled := shuffledCharset(layerKey)
	var unsubstitute [256]byte
	for i := range unsubstitute {
		unsubstitute[i] = byte(i)
	}
	for i, b := range shuffled {
		unsubstitute[b] = byte(i) + charsetBase
	}
	result := make([]byte, len(transposed))
	for i, b := range transposed {
		result[i] = unsubstitute[b]
	}
	return result
}

// untranspose reverses a columnar transposition: the ciphertext was
// read out column by column in sorted-key order, so it is written back
// the same way and read row by row. Cells past the input stay spaces.
func untranspose(data []byte, key string) []byte {
	columns := len(key)
	if columns == 0 {
		return data
	}
	rows := (len(data) + columns - 1) / columns

	grid := make([]byte, rows*columns)
	for i := range grid {
		grid[i] = ' '
	}

	order := make([]int, columns)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key[order[a]] < key[order[b]]
	})

	i := 0
	for _, column := range order {
		for row := 0; row < rows && i < len(data); row++ {
			grid[row*columns+column] = data[i]
			i++
		}
	}
	return grid
}

// shuffledCharset builds the substitution alphabet: the printable
// charset run through a Fisher-Yates shuffle seeded by the layer key.
func shuffledCharset(key string) []byte {
	charset := make([]byte, charsetSize)
	for i := range charset {
		charset[i] = byte(i) + charsetBase
	}
	seed := hash31(key)
	for i := len(charset) - 1; i > 0; i-- {
		j := seededRand(&seed, i+1)
		charset[i], charset[j] = charset[j], charset[i]
	}
	return charset
}

func hash31(key string) uint64 {
	var hash uint64
	for i := 0; i < len(key); i++ {
		hash = (hash*31 + uint64(key[i])) & 0xffffffff
	}
	return hash
}

// seededRand advances the shared linear congruential generator and
// returns a value in [0, bound).
func seededRand(seed *uint64, bound int) int {
	*seed = (*seed*1103515245 + 12345) & 0x7fffffff
	return int(*seed % uint64(bound))
}

// deriveKey mirrors the player's key schedule: hash the concatenated
// keys, XOR, rotate by the hash, interleave with the reversed client
// key and renormalize into the printable charset.
func deriveKey(remoteKey string, clientKey string) string {
	tempKey := []byte(remoteKey + clientKey)
	if len(tempKey) == 0 {
		return ""
	}

	hash := big.NewInt(0)
	for _, b := range tempKey {
		previous := new(big.Int).Set(hash)
		hash.Add(big.NewInt(int64(b)), new(big.Int).Mul(previous, big.NewInt(31)))
		hash.Add(hash, new(big.Int).Lsh(previous, 7))
		hash.Sub(hash, previous)
	}
	hash.Abs(hash)
	bounded := new(big.Int).Mod(hash, new(big.Int).SetUint64(0x7fffffffffffffff)).Int64()

	for i := range tempKey {
		tempKey[i] ^= keyXORValue
	}
	pivot := (int(bounded%int64(len(tempKey))) + keyShiftValue) % len(tempKey)
	rotated := make([]byte, 0, len(tempKey))
	rotated = append(rotated, tempKey[pivot:]...)
	rotated = append(rotated, tempKey[:pivot]...)

	reversedClient := []byte(deobf.ReverseString(clientKey))
	var key []byte
	for i := 0; i < len(rotated) || i < len(reversedClient); i++ {
		if i < len(rotated) {
			key = append(key, rotated[i])
		}
		if i < len(reversedClient) {
			key = append(key, reversedClient[i])
		}
	}

	limit := 96 + int(bounded%33)
	if limit > len(key) {
		limit = len(key)
	}
	key = key[:limit]
	for i := range key {
		key[i] = key[i]%charsetSize + charsetBase
	}
	return string(key)
}
