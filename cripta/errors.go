package cripta

import "errors"

var (
	ErrFileOpen          = errors.New("cannot open input file")
	ErrFileWrite         = errors.New("cannot write output file")
	ErrInvalidPadding    = errors.New("invalid padding")
	ErrInvalidKeyLength  = errors.New("key and IV must be 16 bytes")
	ErrInvalidCiphertext = errors.New("ciphertext length is not a multiple of the block size")
)
