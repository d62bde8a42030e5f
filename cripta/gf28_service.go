package cripta

// aesModulus is the low byte of the AES reduction polynomial x^8+x^4+x^3+x+1 (0x11B).
const aesModulus byte = 0x1B

// GFMul multiplies two elements of GF(2^8) modulo the AES polynomial.
func GFMul(a, b byte) byte {
	var result byte

	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			result ^= a
		}

		// carry must be taken before the shift drops the high bit
		carry := a&0x80 != 0
		a <<= 1

		if carry {
			a ^= aesModulus
		}

		b >>= 1
	}

	return result
}

// xtime multiplies a by x (that is, by 0x02).
func xtime(a byte) byte {
	if a&0x80 != 0 {
		return a<<1 ^ aesModulus
	}
	return a << 1
}
