// Command aesfile encrypts and decrypts files with the in-tree AES-128 engine.
//
// Encrypt a file in CBC mode with an explicit key and IV:
//
//	aesfile encrypt -i input.txt -o output.enc --key 2b7e151628aed2a6abf7158809cf4f3c --iv 000102030405060708090a0b0c0d0e0f
//
// Generate a key, keep it in the keystore and use it by ID:
//
//	aesfile keygen --name backup
//	aesfile encrypt -i photo.jpg -o photo.enc --key-id <id> --workers 8
//	aesfile decrypt -i photo.enc -o photo.jpg --key-id <id>
//
// Inspect a decrypted file as printable text:
//
//	aesfile decrypt -i notes.enc -o notes.txt --key-id <id> --text
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
