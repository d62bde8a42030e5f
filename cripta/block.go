package cripta

import "encoding/hex"

// BlockSize is the AES-128 block and key size in bytes.
const BlockSize = 16

// Block is one AES state. The byte at block[r+4*c] is row r, column c:
// a column is four consecutive bytes, a row is every fourth byte.
type Block [BlockSize]byte

// Blocks is a block sequence in file offset order.
type Blocks []Block

// String returns the block as lowercase hex.
func (b Block) String() string {
	return hex.EncodeToString(b[:])
}

func (b *Block) xor(other *Block) {
	for i := range b {
		b[i] ^= other[i]
	}
}

// Bytes concatenates all blocks.
func (bs Blocks) Bytes() []byte {
	out := make([]byte, 0, len(bs)*BlockSize)
	for i := range bs {
		out = append(out, bs[i][:]...)
	}
	return out
}

func blockFromBytes(data []byte) (Block, bool) {
	var b Block
	if len(data) != BlockSize {
		return b, false
	}
	copy(b[:], data)
	return b, true
}
