package cripta

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateRandomBytes fills buf from the system CSPRNG.
func GenerateRandomBytes(buf []byte) (int, error) {
	n, err := rand.Read(buf)
	if err != nil {
		return n, fmt.Errorf("read random bytes: %w", err)
	}
	return n, nil
}

// GenerateKeyIV returns a fresh random key and IV, BlockSize bytes each.
func GenerateKeyIV() (key, iv []byte, err error) {
	buf := make([]byte, 2*BlockSize)
	if _, err := GenerateRandomBytes(buf); err != nil {
		return nil, nil, err
	}
	return buf[:BlockSize], buf[BlockSize:], nil
}

// ParseHexBlock decodes a 32-character hex string into 16 bytes. Whitespace
// and an optional 0x prefix are ignored.
func ParseHexBlock(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")

	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex: %w", ErrInvalidKeyLength, err)
	}
	if len(data) != BlockSize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKeyLength, BlockSize, len(data))
	}
	return data, nil
}
