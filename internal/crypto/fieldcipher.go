// Package crypto provides field-level encryption for sensitive record
// attributes (patient names, session note text). Values are encrypted at the
// service read/write boundary and stored only as ciphertext.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/clinicore/clinical-notes-backend/internal/config"
)

const nonceSize = 12

// FieldCipher encrypts and decrypts single string fields with AES-256-GCM
// under one process-wide key. The key material is read from config on every
// call rather than captured at construction.
type FieldCipher struct {
	cfg *config.Config
}

func NewFieldCipher(cfg *config.Config) *FieldCipher {
	return &FieldCipher{cfg: cfg}
}

func (f *FieldCipher) key() []byte {
	// The configured secret may be any length; hash it down to a 32-byte
	// AES-256 key.
	sum := sha256.Sum256([]byte(f.cfg.EncryptionKey))
	return sum[:]
}

// Encrypt returns base64(nonce || ciphertext) for the given plaintext.
// Empty input is returned unchanged with no ciphertext produced.
func (f *FieldCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(f.key())
	if err != nil {
		return "", fmt.Errorf("field cipher init: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("field cipher init: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("field cipher nonce: %w", err)
	}

	sealed := aesgcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Inputs that fail decoding or authentication are
// returned unchanged: collections predating field encryption still hold
// plaintext values, and those must keep reading back as-is. The failure is
// logged, never surfaced.
func (f *FieldCipher) Decrypt(value string) string {
	if value == "" {
		return value
	}

	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(raw) <= nonceSize {
		return value
	}

	block, err := aes.NewCipher(f.key())
	if err != nil {
		slog.Warn("field decryption unavailable", "error", err)
		return value
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		slog.Warn("field decryption unavailable", "error", err)
		return value
	}

	plaintext, err := aesgcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		slog.Warn("field decryption failed, returning stored value", "error", err)
		return value
	}
	return string(plaintext)
}
