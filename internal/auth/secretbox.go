package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrDecrypt is returned when a sealed value cannot be opened.
var ErrDecrypt = errors.New("cannot decrypt value")

// Sealer encrypts small secrets (provider API keys) for storage.
// Output is base64(nonce || secretbox(plaintext)).
type Sealer struct {
	key [32]byte
}

// NewSealer derives the box key from passphrase with SHA-256.
func NewSealer(passphrase string) *Sealer {
	return &Sealer{key: sha256.Sum256([]byte(passphrase))}
}

// Seal encrypts plaintext with a fresh random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrDecrypt
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])

	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	const visible = 4
	r := []rune(secret)
	if len(r) <= visible {
		return "****"
	}
	return "****" + string(r[len(r)-visible:])
}
