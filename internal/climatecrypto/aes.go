// Package climatecrypto implements the primitives the vendor cloud protocol
// requires for the login handshake: AES-128-CBC with zero padding (not
// PKCS#7 — the vendor's own server expects exact zero bytes, since the
// plaintext is JSON with no embedded NUL) and the MD5/SHA-1 digests used to
// derive tokens and keys.
package climatecrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// EncryptAESCBCZeroPad encrypts plaintext under AES-128-CBC, padding with
// zero bytes to the next multiple of the block size first. iv and key must
// each be exactly 16 bytes.
func EncryptAESCBCZeroPad(iv, key, plaintext []byte) ([]byte, error) {
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("climatecrypto: iv must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	if len(key) != 16 {
		return nil, fmt.Errorf("climatecrypto: key must be 16 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("climatecrypto: new cipher: %w", err)
	}

	padded := zeroPad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, padded)

	return ciphertext, nil
}

// zeroPad appends zero bytes until the length is a multiple of blockSize.
// If the input is already aligned, it is returned unmodified (a full block
// of padding is NOT added, matching the vendor's own zero-pad behavior).
func zeroPad(data []byte, blockSize int) []byte {
	remainder := len(data) % blockSize
	if remainder == 0 {
		return data
	}
	padLen := blockSize - remainder
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	return padded
}
