package cripta

// subBytes applies the S-box to every byte of the state
func (b *Block) subBytes() {
	for i := range b {
		b[i] = sBox[b[i]]
	}
}

// invSubBytes applies the inverse S-box
func (b *Block) invSubBytes() {
	for i := range b {
		b[i] = invSBox[b[i]]
	}
}

// rotateRow rotates row left by n positions. The row lives at offsets
// row, row+4, row+8, row+12.
func (b *Block) rotateRow(row, n int) {
	var tmp [4]byte
	for c := 0; c < 4; c++ {
		tmp[c] = b[row+4*((c+n)%4)]
	}
	for c := 0; c < 4; c++ {
		b[row+4*c] = tmp[c]
	}
}

// shiftRows rotates row i left by i; row 0 is left alone
func (b *Block) shiftRows() {
	b.rotateRow(1, 1)
	b.rotateRow(2, 2)
	b.rotateRow(3, 3)
}

// invShiftRows rotates row i right by i
func (b *Block) invShiftRows() {
	b.rotateRow(1, 3)
	b.rotateRow(2, 2)
	b.rotateRow(3, 1)
}

// mixColumns multiplies every column by the fixed {02,03,01,01} circulant matrix
func (b *Block) mixColumns() {
	for i := 0; i < BlockSize; i += 4 {
		s0 := b[i]
		s1 := b[i+1]
		s2 := b[i+2]
		s3 := b[i+3]

		// 03·s = xtime(s) ^ s
		b[i] = xtime(s0) ^ xtime(s1) ^ s1 ^ s2 ^ s3
		b[i+1] = s0 ^ xtime(s1) ^ xtime(s2) ^ s2 ^ s3
		b[i+2] = s0 ^ s1 ^ xtime(s2) ^ xtime(s3) ^ s3
		b[i+3] = xtime(s0) ^ s0 ^ s1 ^ s2 ^ xtime(s3)
	}
}

// invMixColumns multiplies every column by the {0e,0b,0d,09} circulant matrix
func (b *Block) invMixColumns() {
	for i := 0; i < BlockSize; i += 4 {
		s0 := b[i]
		s1 := b[i+1]
		s2 := b[i+2]
		s3 := b[i+3]

		b[i] = GFMul(0x0e, s0) ^ GFMul(0x0b, s1) ^ GFMul(0x0d, s2) ^ GFMul(0x09, s3)
		b[i+1] = GFMul(0x09, s0) ^ GFMul(0x0e, s1) ^ GFMul(0x0b, s2) ^ GFMul(0x0d, s3)
		b[i+2] = GFMul(0x0d, s0) ^ GFMul(0x09, s1) ^ GFMul(0x0e, s2) ^ GFMul(0x0b, s3)
		b[i+3] = GFMul(0x0b, s0) ^ GFMul(0x0d, s1) ^ GFMul(0x09, s2) ^ GFMul(0x0e, s3)
	}
}

// addRoundKey is its own inverse
func (b *Block) addRoundKey(roundKey *Block) {
	b.xor(roundKey)
}

// SubBytes substitutes every byte of every block through the S-box.
func SubBytes(blocks Blocks) {
	for i := range blocks {
		blocks[i].subBytes()
	}
}

// InvSubBytes undoes SubBytes.
func InvSubBytes(blocks Blocks) {
	for i := range blocks {
		blocks[i].invSubBytes()
	}
}

// ShiftRows applies the row rotation to every block.
func ShiftRows(blocks Blocks) {
	for i := range blocks {
		blocks[i].shiftRows()
	}
}

// InvShiftRows undoes ShiftRows.
func InvShiftRows(blocks Blocks) {
	for i := range blocks {
		blocks[i].invShiftRows()
	}
}

// MixColumns applies the column mixing to every block.
func MixColumns(blocks Blocks) {
	for i := range blocks {
		blocks[i].mixColumns()
	}
}

// InvMixColumns undoes MixColumns.
func InvMixColumns(blocks Blocks) {
	for i := range blocks {
		blocks[i].invMixColumns()
	}
}

// AddRoundKey XORs roundKey into every block.
func AddRoundKey(blocks Blocks, roundKey *Block) {
	for i := range blocks {
		blocks[i].addRoundKey(roundKey)
	}
}
