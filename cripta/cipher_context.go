package cripta

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Mode int

const (
	// ModeCBC XORs every plaintext block with the previous ciphertext block
	// (the IV for the first one) before encryption.
	ModeCBC Mode = iota
	// ModeECB encrypts every block independently. Equal plaintext blocks give
	// equal ciphertext blocks, so the layout of the plaintext leaks.
	ModeECB
)

func (m Mode) String() string {
	switch m {
	case ModeCBC:
		return "cbc"
	case ModeECB:
		return "ecb"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func (m Mode) valid() bool {
	return m == ModeCBC || m == ModeECB
}

// ParseMode converts "cbc" or "ecb" (any case) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cbc":
		return ModeCBC, nil
	case "ecb":
		return ModeECB, nil
	default:
		return 0, fmt.Errorf("unknown cipher mode %q", s)
	}
}

// EncryptBlocks encrypts blocks in place using the engine's mode. The caller
// is responsible for padding.
func (e *Engine) EncryptBlocks(blocks Blocks) {
	switch e.mode {
	case ModeECB:
		e.forEachRange(blocks, e.encryptBlocks)

	case ModeCBC:
		prev := e.iv
		for i := range blocks {
			blocks[i].xor(&prev)
			e.encryptBlocks(blocks[i : i+1])
			prev = blocks[i]
		}
	}
}

// DecryptBlocks decrypts blocks in place using the engine's mode.
func (e *Engine) DecryptBlocks(blocks Blocks) {
	switch e.mode {
	case ModeECB:
		e.forEachRange(blocks, e.decryptBlocks)

	case ModeCBC:
		if len(blocks) == 0 {
			return
		}
		// every ciphertext block is known up front, so CBC decryption
		// parallelises like ECB once the chain inputs are saved
		chain := make(Blocks, len(blocks))
		chain[0] = e.iv
		copy(chain[1:], blocks[:len(blocks)-1])

		e.forEachRange(blocks, e.decryptBlocks)

		for i := range blocks {
			blocks[i].xor(&chain[i])
		}
	}
}

// forEachRange splits blocks into contiguous ranges and runs fn on each range
// in its own goroutine. It returns once every range is done.
func (e *Engine) forEachRange(blocks Blocks, fn func(Blocks)) {
	numThreads := e.workers
	if numThreads > len(blocks) {
		numThreads = len(blocks)
	}
	if numThreads <= 1 {
		fn(blocks)
		return
	}

	blocksPerThread := (len(blocks) + numThreads - 1) / numThreads

	var wg sync.WaitGroup
	for start := 0; start < len(blocks); start += blocksPerThread {
		end := min(start+blocksPerThread, len(blocks))

		wg.Add(1)
		go func(part Blocks) {
			defer wg.Done()
			fn(part)
		}(blocks[start:end])
	}
	wg.Wait()
}

// Encrypt pads and encrypts plaintext held in memory.
func (e *Engine) Encrypt(plaintext []byte) ([]byte, error) {
	blocks, n, err := ReadBlocks(bytes.NewReader(plaintext))
	if err != nil {
		return nil, err
	}

	blocks = Pad(blocks, n)
	e.EncryptBlocks(blocks)

	return blocks.Bytes(), nil
}

// Decrypt decrypts ciphertext held in memory and strips the padding.
func (e *Engine) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidCiphertext, len(ciphertext))
	}

	blocks, _, err := ReadBlocks(bytes.NewReader(ciphertext))
	if err != nil {
		return nil, err
	}

	e.DecryptBlocks(blocks)

	return Unpad(blocks)
}

// EncryptFile encrypts inputPath into outputPath. The output is the bare
// ciphertext: no header, no IV, no length field.
func (e *Engine) EncryptFile(inputPath, outputPath string) error {
	blocks, n, err := load(inputPath)
	if err != nil {
		return err
	}
	e.trace("plaintext loaded", blocks)

	blocks = Pad(blocks, n)
	e.EncryptBlocks(blocks)
	e.trace("ciphertext ready", blocks)

	if err := Save(blocks, outputPath); err != nil {
		return err
	}

	e.log.Info("file encrypted",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Stringer("mode", e.mode),
		zap.Int64("plaintext_bytes", n),
		zap.Int("blocks", len(blocks)),
	)
	return nil
}

// DecryptFile decrypts inputPath into outputPath and removes the padding.
func (e *Engine) DecryptFile(inputPath, outputPath string) error {
	blocks, err := e.decryptLoaded(inputPath)
	if err != nil {
		return err
	}

	plaintext, err := Unpad(blocks)
	if err != nil {
		return err
	}

	if err := writeFile(outputPath, func(w io.Writer) error {
		_, err := w.Write(plaintext)
		return err
	}); err != nil {
		return err
	}

	e.log.Info("file decrypted",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Stringer("mode", e.mode),
		zap.Int("plaintext_bytes", len(plaintext)),
	)
	return nil
}

// DecryptFileText decrypts inputPath and writes the SaveText rendering of the
// plaintext blocks, padding block included, to outputPath. It is meant for
// eyeballing a result and its output cannot be decrypted or used as the
// recovered file.
func (e *Engine) DecryptFileText(inputPath, outputPath string) error {
	blocks, err := e.decryptLoaded(inputPath)
	if err != nil {
		return err
	}

	if _, err := Unpad(blocks); err != nil {
		return err
	}

	return SaveText(blocks, outputPath)
}

func (e *Engine) decryptLoaded(inputPath string) (Blocks, error) {
	blocks, n, err := load(inputPath)
	if err != nil {
		return nil, err
	}
	if n%BlockSize != 0 {
		return nil, fmt.Errorf("%w: %q is %d bytes", ErrInvalidCiphertext, inputPath, n)
	}
	e.trace("ciphertext loaded", blocks)

	e.DecryptBlocks(blocks)
	e.trace("plaintext ready", blocks)

	return blocks, nil
}
