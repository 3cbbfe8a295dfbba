package deobf

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rand"
	"crypto/rc4"
	"encoding/base64"
	"fmt"

	"github.com/pkg/errors"
)

const opensslSaltHeader = "Salted__"

// DecryptAESCBC decrypts an AES-CBC payload and strips PKCS#7 padding.
func DecryptAESCBC(data []byte, key []byte, iv []byte) ([]byte, error) {
	if !IsValidAESKey(key) {
		return nil, fmt.Errorf("invalid key: expected 16, 24 or 32 bytes, got %d", len(key))
	}
	if !IsValidIV(iv) {
		return nil, fmt.Errorf("invalid IV: expected 16 bytes, got %d", len(iv))
	}
	if len(data) == 0 {
		return nil, errors.New("no data to decrypt")
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, errors.New("encrypted data length is not a multiple of block size")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	mode := cipher.NewCBCDecrypter(block, iv)
	decrypted := make([]byte, len(data))
	mode.CryptBlocks(decrypted, data)
	return RemovePKCS7Padding(decrypted)
}

// EncryptAESCBC pads with PKCS#7 and encrypts with AES-CBC.
func EncryptAESCBC(data []byte, key []byte, iv []byte) ([]byte, error) {
	if !IsValidAESKey(key) {
		return nil, fmt.Errorf("invalid key: expected 16, 24 or 32 bytes, got %d", len(key))
	}
	if !IsValidIV(iv) {
		return nil, fmt.Errorf("invalid IV: expected 16 bytes, got %d", len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	padded := PadPKCS7(data, aes.BlockSize)
	mode := cipher.NewCBCEncrypter(block, iv)
	encrypted := make([]byte, len(padded))
	mode.CryptBlocks(encrypted, padded)
	return encrypted, nil
}

// DecryptSaltedAES handles OpenSSL/CryptoJS passphrase payloads: a
// "Salted__" header, 8 bytes of salt, then the AES-256-CBC ciphertext
// with the key and IV derived through the MD5 EVP scheme.
func DecryptSaltedAES(data []byte, passphrase []byte) ([]byte, error) {
	if len(data) < 16 || string(data[:8]) != opensslSaltHeader {
		return nil, errors.New("missing OpenSSL salt header")
	}
	salt := data[8:16]
	key, iv := evpBytesToKey(passphrase, salt, 32, aes.BlockSize)
	return DecryptAESCBC(data[16:], key, iv)
}

// EncryptSaltedAES is the encrypting counterpart of DecryptSaltedAES,
// producing a payload CryptoJS opens with the same passphrase.
func EncryptSaltedAES(data []byte, passphrase []byte) ([]byte, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	key, iv := evpBytesToKey(passphrase, salt, 32, aes.BlockSize)
	encrypted, err := EncryptAESCBC(data, key, iv)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 16+len(encrypted))
	out = append(out, opensslSaltHeader...)
	out = append(out, salt...)
	out = append(out, encrypted...)
	return out, nil
}

func evpBytesToKey(passphrase []byte, salt []byte, keyLen int, ivLen int) ([]byte, []byte) {
	var derived []byte
	var block []byte
	for len(derived) < keyLen+ivLen {
		hash := md5.New()
		hash.Write(block)
		hash.Write(passphrase)
		hash.Write(salt)
		block = hash.Sum(nil)
		derived = append(derived, block...)
	}
	return derived[:keyLen], derived[keyLen : keyLen+ivLen]
}

// RC4Bytes applies the RC4 keystream; running it twice with the same
// key restores the input.
func RC4Bytes(key []byte, data []byte) ([]byte, error) {
	cipher, err := rc4.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create RC4 cipher: %w", err)
	}
	out := make([]byte, len(data))
	cipher.XORKeyStream(out, data)
	return out, nil
}

// RC4Base64Encode encrypts with RC4 and wraps in URL-safe base64.
func RC4Base64Encode(key []byte, data string) (string, error) {
	encrypted, err := RC4Bytes(key, []byte(data))
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(encrypted), nil
}

// RC4Base64Decode unwraps URL-safe base64 and decrypts with RC4.
func RC4Base64Decode(key []byte, data string) (string, error) {
	raw, err := DecodeBase64(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode payload: %w", err)
	}
	decrypted, err := RC4Bytes(key, raw)
	if err != nil {
		return "", err
	}
	return string(decrypted), nil
}

// DecryptSegmentBytes decrypts a single AES-128-CBC HLS segment,
// deriving the segment IV from the media sequence number.
func DecryptSegmentBytes(encryptedData []byte, key []byte, iv []byte, mediaSequence int) ([]byte, error) {
	if len(key) != 16 {
		return nil, fmt.Errorf("invalid key: expected 16 bytes, got %d", len(key))
	}
	if !IsValidIV(iv) {
		return nil, fmt.Errorf("invalid IV: expected 16 bytes, got %d", len(iv))
	}
	if len(encryptedData) == 0 {
		return nil, errors.New("no data to decrypt")
	}
	if len(encryptedData)%aes.BlockSize != 0 {
		return nil, errors.New("encrypted data length is not a multiple of block size")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	segmentIV := calculateSegmentIV(iv, mediaSequence)
	mode := cipher.NewCBCDecrypter(block, segmentIV)
	decrypted := make([]byte, len(encryptedData))
	mode.CryptBlocks(decrypted, encryptedData)
	return RemovePKCS7Padding(decrypted)
}

// calculates the IV for a specific segment using media sequence number
// HLS specification: each segment uses base IV + media sequence number
func calculateSegmentIV(baseIV []byte, mediaSequence int) []byte {
	iv := make([]byte, len(baseIV))
	copy(iv, baseIV)

	seqNum := uint32(mediaSequence)
	carry := uint32(0)

	// add media sequence to the last 4 bytes of IV (big-endian)
	for i := 15; i >= 12; i-- {
		sum := uint32(iv[i]) + ((seqNum >> (8 * (15 - i))) & 0xFF) + carry
		iv[i] = byte(sum & 0xFF)
		carry = sum >> 8
	}
	for i := 11; i >= 0 && carry > 0; i-- {
		sum := uint32(iv[i]) + carry
		iv[i] = byte(sum & 0xFF)
		carry = sum >> 8
	}

	return iv
}

func PadPKCS7(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

// RemovePKCS7Padding strips PKCS#7 padding, rejecting malformed tails.
func RemovePKCS7Padding(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("data is empty")
	}
	paddingLength := int(data[len(data)-1])
	if paddingLength == 0 || paddingLength > aes.BlockSize {
		return nil, fmt.Errorf("invalid padding length: %d", paddingLength)
	}
	if paddingLength > len(data) {
		return nil, fmt.Errorf("padding length (%d) exceeds data length (%d)", paddingLength, len(data))
	}
	for i := len(data) - paddingLength; i < len(data); i++ {
		if data[i] != byte(paddingLength) {
			return nil, fmt.Errorf("invalid padding at position %d", i)
		}
	}
	return data[:len(data)-paddingLength], nil
}

func IsValidAESKey(key []byte) bool {
	switch len(key) {
	case 16, 24, 32:
		return true
	}
	return false
}

func IsValidIV(iv []byte) bool {
	return len(iv) == 16
}

func GenerateZeroIV() []byte {
	return make([]byte, 16)
}
