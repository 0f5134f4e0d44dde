package shared

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptionKeyEnv is the environment variable holding the hex-encoded
// 32-byte key used to encrypt tokens at rest.
const EncryptionKeyEnv = "WUNSCHBOX_ENCRYPTION_KEY"

// EncryptionKeyFile is the fallback key file consulted when the environment
// variable is unset.
const EncryptionKeyFile = ".wunschbox.key"

// SecretBox encrypts and decrypts small secrets (OAuth tokens) with an
// XChaCha20-Poly1305 AEAD. Ciphertexts are base64-encoded for storage in
// TEXT columns.
type SecretBox struct {
	key []byte
}

// NewSecretBox creates a SecretBox from a 32-byte key.
func NewSecretBox(key []byte) (*SecretBox, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrEncryptionKey, chacha20poly1305.KeySize, len(key))
	}
	return &SecretBox{key: key}, nil
}

// LoadSecretBox resolves the encryption key and returns a SecretBox.
//
// Resolution order: WUNSCHBOX_ENCRYPTION_KEY env var (hex), then the key
// file, then a freshly generated ephemeral key. The ephemeral path logs a
// warning: tokens encrypted with it cannot be decrypted after a restart.
func LoadSecretBox(logger *log.Logger) (*SecretBox, error) {
	if raw := strings.TrimSpace(os.Getenv(EncryptionKeyEnv)); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not valid hex", ErrEncryptionKey, EncryptionKeyEnv)
		}
		return NewSecretBox(key)
	}

	if data, err := os.ReadFile(EncryptionKeyFile); err == nil {
		key, err := hex.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("%w: key file %s is not valid hex", ErrEncryptionKey, EncryptionKeyFile)
		}
		return NewSecretBox(key)
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionKey, err)
	}
	if logger != nil {
		logger.Warn("no encryption key configured, using ephemeral key; stored tokens will be unreadable after restart",
			"env", EncryptionKeyEnv, "file", EncryptionKeyFile)
	}
	return &SecretBox{key: key}, nil
}

// Seal encrypts plaintext and returns a base64 string of nonce||ciphertext.
func (b *SecretBox) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (b *SecretBox) Open(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFail, err)
	}

	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize() {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryptionFail)
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFail, err)
	}

	return string(plaintext), nil
}
