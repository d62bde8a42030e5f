package cripta

import "fmt"

// Pad terminates a loaded plaintext with PKCS#7 padding. n is the number of
// plaintext bytes the blocks were read from. When n is not a multiple of the
// block size the final block already carries its padding; otherwise a full
// block of 0x10 bytes is appended so that Unpad can always find a terminator.
func Pad(blocks Blocks, n int64) Blocks {
	if n%BlockSize != 0 {
		return blocks
	}

	var full Block
	for i := range full {
		full[i] = BlockSize
	}
	return append(blocks, full)
}

// Unpad checks the PKCS#7 padding on the last block and returns the
// plaintext with the padding stripped.
func Unpad(blocks Blocks) ([]byte, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: no blocks", ErrInvalidPadding)
	}

	last := blocks[len(blocks)-1]
	paddingLength := int(last[BlockSize-1])

	if paddingLength < 1 || paddingLength > BlockSize {
		return nil, fmt.Errorf("%w: pad length %d", ErrInvalidPadding, paddingLength)
	}

	for i := BlockSize - paddingLength; i < BlockSize; i++ {
		if last[i] != byte(paddingLength) {
			return nil, fmt.Errorf("%w: byte %d is 0x%02x, want 0x%02x", ErrInvalidPadding, i, last[i], paddingLength)
		}
	}

	data := blocks.Bytes()
	return data[:len(data)-paddingLength], nil
}
