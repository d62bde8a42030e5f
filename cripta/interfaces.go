package cripta

// BlockCipher encrypts and decrypts one 16-byte block without chaining.
type BlockCipher interface {
	EncryptBlock(dst, src *Block)
	DecryptBlock(dst, src *Block)
}

// FileCipher encrypts and decrypts whole files.
type FileCipher interface {
	EncryptFile(inputPath, outputPath string) error
	DecryptFile(inputPath, outputPath string) error
	DecryptFileText(inputPath, outputPath string) error
}

var (
	_ BlockCipher = (*Engine)(nil)
	_ FileCipher  = (*Engine)(nil)
)
