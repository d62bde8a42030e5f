package cripta

import (
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEncryptBlockFIPS197(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		plaintext  string
		ciphertext string
	}{
		{"appendix c.1", "000102030405060708090a0b0c0d0e0f", "00112233445566778899aabbccddeeff", "69c4e0d86a7b0430d8cdb78070b4c55a"},
		{"appendix b", "2b7e151628aed2a6abf7158809cf4f3c", "3243f6a8885a308d313198a2e0370734", "3925841d02dc09fbdc118597196a0b32"},
		{"sp800-38a ecb 1", "2b7e151628aed2a6abf7158809cf4f3c", "6bc1bee22e409f96e93d7e117393172a", "3ad77bb40d7a3660a89ecaf32466ef97"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := mustBlock(t, tt.key)
			engine, err := NewEngine(key[:], make([]byte, BlockSize))
			require.NoError(t, err)

			src := mustBlock(t, tt.plaintext)
			var dst Block
			engine.EncryptBlock(&dst, &src)
			assert.Equal(t, tt.ciphertext, dst.String())

			var back Block
			engine.DecryptBlock(&back, &dst)
			assert.Equal(t, tt.plaintext, back.String())
		})
	}
}

func TestEncryptBlockMatchesStdlib(t *testing.T) {
	key := []byte("0123456789abcdef")
	engine, err := NewEngine(key, make([]byte, BlockSize))
	require.NoError(t, err)

	ref, err := aes.NewCipher(key)
	require.NoError(t, err)

	var src Block
	for i := 0; i < 256; i++ {
		for j := range src {
			src[j] = byte(i*7 + j*13)
		}

		var got, want Block
		engine.EncryptBlock(&got, &src)
		ref.Encrypt(want[:], src[:])
		require.Equal(t, want, got, "block %d", i)
	}
}

func TestNewEngineKeyLength(t *testing.T) {
	tests := []struct {
		name    string
		key, iv []byte
	}{
		{"short key", make([]byte, 15), make([]byte, 16)},
		{"aes-256 key", make([]byte, 32), make([]byte, 16)},
		{"empty key", nil, make([]byte, 16)},
		{"short iv", make([]byte, 16), make([]byte, 8)},
		{"missing iv", make([]byte, 16), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(tt.key, tt.iv)
			assert.ErrorIs(t, err, ErrInvalidKeyLength)
			assert.Nil(t, engine)
		})
	}
}

func TestNewEngineRejectsUnknownMode(t *testing.T) {
	_, err := NewEngine(make([]byte, 16), make([]byte, 16), WithMode(Mode(42)))
	assert.Error(t, err)
}

func TestEngineAccessors(t *testing.T) {
	key := mustBlock(t, "000102030405060708090a0b0c0d0e0f")
	iv := mustBlock(t, "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff")

	engine, err := NewEngine(key[:], iv[:], WithMode(ModeECB))
	require.NoError(t, err)

	assert.Equal(t, "000102030405060708090a0b0c0d0e0f", engine.KeyHex())
	assert.Equal(t, "f0f1f2f3f4f5f6f7f8f9fafbfcfdfeff", engine.IVHex())
	assert.Equal(t, ModeECB, engine.Mode())
}

func TestEngineTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine, err := NewEngine(make([]byte, 16), make([]byte, 16), WithLogger(zap.New(core)))
	require.NoError(t, err)

	dir := t.TempDir()
	in := writeTemp(t, dir, "plain.txt", []byte("trace me"))
	require.NoError(t, engine.EncryptFile(in, dir+"/out.bin"))

	loaded := logs.FilterMessage("plaintext loaded").All()
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(1), loaded[0].ContextMap()["blocks"])

	assert.Equal(t, 1, logs.FilterMessage("ciphertext ready").Len())
	assert.Equal(t, 1, logs.FilterMessage("file encrypted").Len())
}
