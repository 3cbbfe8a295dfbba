package deobf

import (
	"bytes"
	"testing"
)

var (
	testKey32 = []byte("12345678901234567890123456789012")
	testKey16 = []byte("1234567890123456")
	testIV    = []byte("abcdefghijklmnop")
)

func TestAESCBCRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short payload", []byte("hello")},
		{"exact block", []byte("0123456789abcdef")},
		{"json payload", []byte(`{"source":"https://cdn.example/video.m3u8"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := EncryptAESCBC(tt.data, testKey32, testIV)
			if err != nil {
				t.Fatalf("EncryptAESCBC() error = %v", err)
			}
			if bytes.Equal(encrypted, tt.data) {
				t.Fatal("ciphertext equals plaintext")
			}
			decrypted, err := DecryptAESCBC(encrypted, testKey32, testIV)
			if err != nil {
				t.Fatalf("DecryptAESCBC() error = %v", err)
			}
			if !bytes.Equal(decrypted, tt.data) {
				t.Errorf("round trip = %q, want %q", decrypted, tt.data)
			}
		})
	}
}

func TestDecryptAESCBCValidation(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		key  []byte
		iv   []byte
	}{
		{"bad key length", make([]byte, 16), []byte("short"), testIV},
		{"bad iv length", make([]byte, 16), testKey32, []byte("short")},
		{"empty data", nil, testKey32, testIV},
		{"partial block", make([]byte, 10), testKey32, testIV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecryptAESCBC(tt.data, tt.key, tt.iv); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPKCS7Padding(t *testing.T) {
	padded := PadPKCS7([]byte("hello"), 16)
	if len(padded) != 16 {
		t.Fatalf("padded length = %d, want 16", len(padded))
	}
	if padded[15] != 11 {
		t.Errorf("padding byte = %d, want 11", padded[15])
	}

	// full block input gets a whole extra padding block
	padded = PadPKCS7(make([]byte, 16), 16)
	if len(padded) != 32 || padded[31] != 16 {
		t.Errorf("full block padding: len=%d last=%d, want len=32 last=16", len(padded), padded[31])
	}

	unpadded, err := RemovePKCS7Padding(padded)
	if err != nil {
		t.Fatalf("RemovePKCS7Padding() error = %v", err)
	}
	if len(unpadded) != 16 {
		t.Errorf("unpadded length = %d, want 16", len(unpadded))
	}
}

func TestRemovePKCS7PaddingRejectsCorruptTails(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"zero padding byte", []byte{1, 2, 3, 0}},
		{"padding over block size", []byte{1, 2, 3, 17}},
		{"inconsistent padding", []byte{1, 2, 2, 3}},
		{"padding longer than data", []byte{4}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RemovePKCS7Padding(tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSaltedAESRoundTrip(t *testing.T) {
	passphrase := []byte("kiemtienonline360")
	plain := []byte(`[{"file":"https://cdn.example/hls/master.m3u8"}]`)

	encrypted, err := EncryptSaltedAES(plain, passphrase)
	if err != nil {
		t.Fatalf("EncryptSaltedAES() error = %v", err)
	}
	if string(encrypted[:8]) != "Salted__" {
		t.Fatalf("missing salt header, got %q", encrypted[:8])
	}
	decrypted, err := DecryptSaltedAES(encrypted, passphrase)
	if err != nil {
		t.Fatalf("DecryptSaltedAES() error = %v", err)
	}
	if !bytes.Equal(decrypted, plain) {
		t.Errorf("round trip = %q, want %q", decrypted, plain)
	}
}

func TestDecryptSaltedAESMissingHeader(t *testing.T) {
	if _, err := DecryptSaltedAES([]byte("no header here at all"), []byte("pass")); err == nil {
		t.Error("expected error for missing salt header")
	}
}

func TestRC4Involution(t *testing.T) {
	key := []byte("WXrUARXb1aDLaZjI")
	data := []byte("8Qy2mN0byXr6wlGk")

	once, err := RC4Bytes(key, data)
	if err != nil {
		t.Fatalf("RC4Bytes() error = %v", err)
	}
	twice, err := RC4Bytes(key, once)
	if err != nil {
		t.Fatalf("RC4Bytes() error = %v", err)
	}
	if !bytes.Equal(twice, data) {
		t.Errorf("RC4 is not an involution: got %q, want %q", twice, data)
	}
}

func TestRC4Base64RoundTrip(t *testing.T) {
	key := []byte("WXrUARXb1aDLaZjI")
	const id = "video-id-12345"

	encoded, err := RC4Base64Encode(key, id)
	if err != nil {
		t.Fatalf("RC4Base64Encode() error = %v", err)
	}
	decoded, err := RC4Base64Decode(key, encoded)
	if err != nil {
		t.Fatalf("RC4Base64Decode() error = %v", err)
	}
	if decoded != id {
		t.Errorf("round trip = %q, want %q", decoded, id)
	}
}

func TestDecryptSegmentBytes(t *testing.T) {
	data := []byte("segment payload bytes")

	// segment IV is the zero base IV plus the media sequence number
	seqIV := GenerateZeroIV()
	seqIV[15] = 7
	encrypted, err := EncryptAESCBC(data, testKey16, seqIV)
	if err != nil {
		t.Fatalf("EncryptAESCBC() error = %v", err)
	}

	decrypted, err := DecryptSegmentBytes(encrypted, testKey16, GenerateZeroIV(), 7)
	if err != nil {
		t.Fatalf("DecryptSegmentBytes() error = %v", err)
	}
	if !bytes.Equal(decrypted, data) {
		t.Errorf("round trip = %q, want %q", decrypted, data)
	}

	if _, err := DecryptSegmentBytes(encrypted, testKey32, GenerateZeroIV(), 7); err == nil {
		t.Error("expected error for non-16-byte key")
	}
}

func TestCalculateSegmentIVCarry(t *testing.T) {
	base := GenerateZeroIV()
	for i := 12; i < 16; i++ {
		base[i] = 0xff
	}
	iv := calculateSegmentIV(base, 1)
	for i := 12; i < 16; i++ {
		if iv[i] != 0 {
			t.Errorf("iv[%d] = %#x, want 0", i, iv[i])
		}
	}
	if iv[11] != 1 {
		t.Errorf("iv[11] = %#x, want 1 (carry)", iv[11])
	}
}
