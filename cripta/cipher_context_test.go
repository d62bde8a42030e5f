package cripta

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKey = []byte{0x2b, 0x7e, 0x15, 0x16, 0x28, 0xae, 0xd2, 0xa6, 0xab, 0xf7, 0x15, 0x88, 0x09, 0xcf, 0x4f, 0x3c}
	testIV  = []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(testKey, testIV, opts...)
	require.NoError(t, err)
	return engine
}

func randomBytes(n int, seed int64) []byte {
	data := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(data)
	return data
}

func TestRoundTrip(t *testing.T) {
	lengths := []int{0, 1, 15, 16, 17, 31, 32, 33, 1000, 4096}
	modes := []Mode{ModeCBC, ModeECB}
	workers := []int{1, 4}

	for _, mode := range modes {
		for _, w := range workers {
			for _, n := range lengths {
				t.Run(fmt.Sprintf("%s/workers=%d/len=%d", mode, w, n), func(t *testing.T) {
					engine := newTestEngine(t, WithMode(mode), WithWorkers(w))
					plaintext := randomBytes(n, int64(n))

					ciphertext, err := engine.Encrypt(plaintext)
					require.NoError(t, err)
					assert.Equal(t, (n/BlockSize+1)*BlockSize, len(ciphertext))

					decrypted, err := engine.Decrypt(ciphertext)
					require.NoError(t, err)
					assert.Equal(t, len(plaintext), len(decrypted))
					assert.True(t, bytes.Equal(plaintext, decrypted))
				})
			}
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	plaintext := randomBytes(16*1000+5, 7)

	for _, mode := range []Mode{ModeCBC, ModeECB} {
		t.Run(mode.String(), func(t *testing.T) {
			serial, err := newTestEngine(t, WithMode(mode)).Encrypt(plaintext)
			require.NoError(t, err)

			parallel, err := newTestEngine(t, WithMode(mode), WithWorkers(8)).Encrypt(plaintext)
			require.NoError(t, err)

			assert.Equal(t, serial, parallel)
		})
	}
}

func TestCBCMatchesStdlib(t *testing.T) {
	plaintext := randomBytes(16*37+9, 3)
	engine := newTestEngine(t, WithMode(ModeCBC), WithWorkers(4))

	got, err := engine.Encrypt(plaintext)
	require.NoError(t, err)

	padLen := BlockSize - len(plaintext)%BlockSize
	padded := append(append([]byte(nil), plaintext...), bytes.Repeat([]byte{byte(padLen)}, padLen)...)

	block, err := aes.NewCipher(testKey)
	require.NoError(t, err)
	want := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, testIV).CryptBlocks(want, padded)

	assert.Equal(t, want, got)
}

func TestCBCSP80038AVector(t *testing.T) {
	engine := newTestEngine(t, WithMode(ModeCBC))

	blocks := Blocks{mustBlock(t, "6bc1bee22e409f96e93d7e117393172a")}
	engine.EncryptBlocks(blocks)
	assert.Equal(t, "7649abac8119b246cee98e9b12e9197d", blocks[0].String())

	engine.DecryptBlocks(blocks)
	assert.Equal(t, "6bc1bee22e409f96e93d7e117393172a", blocks[0].String())
}

func TestECBRepeatsEqualBlocks(t *testing.T) {
	plaintext := bytes.Repeat([]byte("sixteen byte blk"), 2)

	ecb, err := newTestEngine(t, WithMode(ModeECB)).Encrypt(plaintext)
	require.NoError(t, err)
	assert.Equal(t, ecb[:16], ecb[16:32])

	cbc, err := newTestEngine(t, WithMode(ModeCBC)).Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, cbc[:16], cbc[16:32])
}

func TestIVChangesCBCOutput(t *testing.T) {
	plaintext := []byte("same plaintext, different IV")

	a, err := newTestEngine(t).Encrypt(plaintext)
	require.NoError(t, err)

	otherIV := append([]byte(nil), testIV...)
	otherIV[0] ^= 1
	engine, err := NewEngine(testKey, otherIV)
	require.NoError(t, err)
	b, err := engine.Encrypt(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecryptErrors(t *testing.T) {
	engine := newTestEngine(t, WithMode(ModeECB))

	t.Run("empty ciphertext", func(t *testing.T) {
		_, err := engine.Decrypt([]byte{})
		assert.ErrorIs(t, err, ErrInvalidPadding)
	})

	t.Run("partial block", func(t *testing.T) {
		_, err := engine.Decrypt(make([]byte, 17))
		assert.ErrorIs(t, err, ErrInvalidCiphertext)
	})

	t.Run("bad padding", func(t *testing.T) {
		// a block whose plaintext ends in 0x00 can never carry valid padding
		var plain Block
		var ct Block
		engine.EncryptBlock(&ct, &plain)

		_, err := engine.Decrypt(ct[:])
		assert.ErrorIs(t, err, ErrInvalidPadding)
	})

	t.Run("wrong key", func(t *testing.T) {
		ciphertext, err := engine.Encrypt([]byte("attack at dawn"))
		require.NoError(t, err)

		otherKey := append([]byte(nil), testKey...)
		otherKey[15] ^= 0x80
		other, err := NewEngine(otherKey, testIV, WithMode(ModeECB))
		require.NoError(t, err)

		plaintext, err := other.Decrypt(ciphertext)
		if err == nil {
			assert.NotEqual(t, []byte("attack at dawn"), plaintext)
		} else {
			assert.ErrorIs(t, err, ErrInvalidPadding)
		}
	})
}

func TestEncryptDecryptFile(t *testing.T) {
	for _, n := range []int{0, 16, 100} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			dir := t.TempDir()
			plaintext := randomBytes(n, 11)

			in := writeTemp(t, dir, "plain.bin", plaintext)
			enc := filepath.Join(dir, "plain.bin.enc")
			out := filepath.Join(dir, "plain.out")

			engine := newTestEngine(t, WithWorkers(2))
			require.NoError(t, engine.EncryptFile(in, enc))

			ciphertext, err := os.ReadFile(enc)
			require.NoError(t, err)
			assert.Equal(t, (n/BlockSize+1)*BlockSize, len(ciphertext))

			require.NoError(t, engine.DecryptFile(enc, out))

			got, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(plaintext, got))
		})
	}
}

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine(t)

	err := engine.EncryptFile(filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, ErrFileOpen)

	err = engine.DecryptFile(filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, ErrFileOpen)

	in := writeTemp(t, dir, "plain.txt", []byte("hello"))
	err = engine.EncryptFile(in, filepath.Join(dir, "no", "such", "dir", "out"))
	assert.ErrorIs(t, err, ErrFileWrite)

	odd := writeTemp(t, dir, "odd.bin", make([]byte, 20))
	err = engine.DecryptFile(odd, filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDecryptFileText(t *testing.T) {
	dir := t.TempDir()
	in := writeTemp(t, dir, "plain.txt", []byte("hello, world\x00\x01!"))
	enc := filepath.Join(dir, "plain.enc")
	txt := filepath.Join(dir, "plain.txt.dump")

	engine := newTestEngine(t)
	require.NoError(t, engine.EncryptFile(in, enc))
	require.NoError(t, engine.DecryptFileText(enc, txt))

	got, err := os.ReadFile(txt)
	require.NoError(t, err)
	// 15 bytes of plaintext plus one 0x01 padding byte fill a single block
	assert.Equal(t, "hello, world..!.\n", string(got))
}
