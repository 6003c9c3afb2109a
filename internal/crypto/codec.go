// Package crypto encrypts individual text fields for storage at rest.
//
// Tokens are self-contained: base64url(nonce || ciphertext+tag) sealed with
// XChaCha20-Poly1305 under a key derived from the process secret.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
	"secure-quiz-service/internal/domain"
)

// MinSecretLength is the shortest secret New accepts.
const MinSecretLength = 16

const keyInfo = "secure-quiz-service field codec v1"

var encoding = base64.RawURLEncoding

// ErrWeakSecret is returned by New for a missing or short secret.
var ErrWeakSecret = fmt.Errorf("crypto secret must be at least %d bytes", MinSecretLength)

// Codec is safe for concurrent use; it holds no mutable state after construction.
type Codec struct {
	aead cipher.AEAD
}

// New derives the field key from secret.
func New(secret string) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Encrypt seals plaintext into a token. An empty plaintext yields an empty token.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return encoding.EncodeToString(sealed), nil
}

// EncryptAll encrypts every value, preserving order.
func (c *Codec) EncryptAll(plaintexts []string) ([]string, error) {
	out := make([]string, len(plaintexts))
	for i, p := range plaintexts {
		token, err := c.Encrypt(p)
		if err != nil {
			return nil, err
		}
		out[i] = token
	}
	return out, nil
}

// Open reverses Encrypt. Malformed or foreign tokens return domain.ErrDecryption.
func (c *Codec) Open(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	raw, err := encoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: bad encoding", domain.ErrDecryption)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", fmt.Errorf("%w: token too short", domain.ErrDecryption)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecryption, err)
	}
	return string(plain), nil
}

// Decrypt is Open that fails closed: errors are logged and an empty string is returned.
func (c *Codec) Decrypt(token string) string {
	plain, err := c.Open(token)
	if err != nil {
		if errors.Is(err, domain.ErrDecryption) {
			log.Printf("decrypt field: %v", err)
		}
		return ""
	}
	return plain
}

// DecryptAll decrypts every token, degrading individual failures to "".
func (c *Codec) DecryptAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = c.Decrypt(t)
	}
	return out
}
