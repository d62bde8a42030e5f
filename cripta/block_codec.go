package cripta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ReadBlocks reads r to the end in 16-byte chunks. A short final chunk is
// filled with N bytes of value N, N being the number of missing bytes. The
// second result is the number of bytes actually read.
func ReadBlocks(r io.Reader) (Blocks, int64, error) {
	var (
		blocks Blocks
		total  int64
	)

	for {
		var block Block

		// io.ReadFull reports io.EOF only when nothing was read, so an input
		// of exactly 16*k bytes ends without an extra all-padding block.
		n, err := io.ReadFull(r, block[:])
		total += int64(n)

		if n > 0 {
			if n < BlockSize {
				pad := byte(BlockSize - n)
				for i := n; i < BlockSize; i++ {
					block[i] = pad
				}
			}
			blocks = append(blocks, block)
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return blocks, total, nil
		}
		if err != nil {
			return nil, total, err
		}
	}
}

// WriteBlocks writes the raw bytes of every block in order, without framing.
func WriteBlocks(w io.Writer, blocks Blocks) error {
	for i := range blocks {
		if _, err := w.Write(blocks[i][:]); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the file at path into padded blocks.
func Load(path string) (Blocks, error) {
	blocks, _, err := load(path)
	return blocks, err
}

func load(path string) (Blocks, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w %q: %w", ErrFileOpen, path, err)
	}
	defer f.Close()

	blocks, n, err := ReadBlocks(bufio.NewReader(f))
	if err != nil {
		return nil, 0, fmt.Errorf("%w %q: %w", ErrFileOpen, path, err)
	}
	return blocks, n, nil
}

// Save writes blocks to path as raw binary.
func Save(blocks Blocks, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteBlocks(w, blocks)
	})
}

// SaveText writes a human readable rendering of blocks, one line per block,
// with every non-printable byte shown as '.'. The output is lossy and cannot
// be decrypted back.
func SaveText(blocks Blocks, path string) error {
	return writeFile(path, func(w io.Writer) error {
		line := make([]byte, BlockSize+1)
		line[BlockSize] = '\n'
		for i := range blocks {
			for j, c := range blocks[i] {
				if c >= 0x20 && c < 0x7f {
					line[j] = c
				} else {
					line[j] = '.'
				}
			}
			if _, err := w.Write(line); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrFileWrite, path, err)
	}

	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		return fmt.Errorf("%w %q: %w", ErrFileWrite, path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w %q: %w", ErrFileWrite, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrFileWrite, path, err)
	}
	return nil
}
