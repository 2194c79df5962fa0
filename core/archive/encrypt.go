package archive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"os"
)

// getDEK retrieves the Data Encryption Key from the environment
// (base64-encoded, 32 bytes after decoding). An unset key means the archive
// stores plaintext.
func getDEK() ([]byte, error) {
	dekB64 := os.Getenv("EHW_DEK")
	if dekB64 == "" {
		return nil, nil
	}
	dek, err := base64.StdEncoding.DecodeString(dekB64)
	if err != nil {
		return nil, errors.New("failed to decode EHW_DEK: " + err.Error())
	}
	if len(dek) != 32 {
		return nil, errors.New("EHW_DEK must be 32 bytes (base64-encoded)")
	}
	return dek, nil
}

// Seal encrypts plaintext using AES-256-GCM and a random nonce when a DEK
// is configured, and passes it through otherwise.
func Seal(plaintext []byte) ([]byte, error) {
	dek, err := getDEK()
	if err != nil {
		return nil, err
	}
	if dek == nil {
		return plaintext, nil
	}
	block, err := aes.NewCipher(dek)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts ciphertext produced by Seal under the configured DEK.
func Open(ciphertext []byte) ([]byte, error) {
	dek, err := getDEK()
	if err != nil {
		return nil, err
	}
	if dek == nil {
		return ciphertext, nil
	}
	block, err := aes.NewCipher(dek)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ct := ciphertext[:nonceSize], ciphertext[nonceSize:]
	return gcm.Open(nil, nonce, ct, nil)
}
