// Package vault seals backing-store blobs with AES-GCM so that collection
// snapshots are unreadable at rest without the configured key.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// KeySize is the required key length (AES-256).
const KeySize = 32

var (
	// ErrCiphertextTooShort is returned when a sealed value cannot hold a nonce.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	// ErrDecrypt is returned on a wrong key or tampered data.
	ErrDecrypt = errors.New("decryption failed (wrong key or tampered data)")
)

// Encrypt seals plaintext with a 32-byte key and returns nonce||ciphertext as hex.
func Encrypt(plaintext []byte, key []byte) (string, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	return hex.EncodeToString(gcm.Seal(nonce, nonce, plaintext, nil)), nil
}

// Decrypt reverses Encrypt.
func Decrypt(cipherHex string, key []byte) ([]byte, error) {
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// ParseKey decodes a hex-encoded 32-byte key.
func ParseKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("vault key must be hex: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("vault key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
