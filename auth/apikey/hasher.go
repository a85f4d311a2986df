// Package apikey hashes and verifies the static API keys accepted by the
// launch API, and generates new ones.
//
//	key, _ := apikey.Generate(32)
//	hash, _ := apikey.NewHasher().Hash(key)   // store in server.auth.api_key_hash
//	err := apikey.NewHasher().Verify(key, hash)
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned by Verify when the key does not match the hash.
var ErrMismatch = errors.New("apikey: key does not match")

// DefaultCost is the bcrypt cost used by NewHasher.
const DefaultCost = 12

// Hasher hashes and verifies API keys with bcrypt.
type Hasher struct {
	cost int
}

// Option configures the Hasher.
type Option func(*Hasher)

// WithCost sets the bcrypt cost parameter (range: 4-31). Out-of-range
// values are ignored.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewHasher creates a bcrypt-based key hasher.
func NewHasher(opts ...Option) *Hasher {
	h := &Hasher{cost: DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash returns the bcrypt hash of key.
func (h *Hasher) Hash(key string) (string, error) {
	if key == "" {
		return "", errors.New("apikey: key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), h.cost)
	if err != nil {
		return "", fmt.Errorf("apikey: hash: %w", err)
	}
	return string(hash), nil
}

// Verify checks key against a bcrypt hash.
func (h *Hasher) Verify(key, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("apikey: verify: %w", err)
	}
}

// Generate creates a random key of n bytes, hex-encoded.
func Generate(n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("apikey: generate: %w", err)
	}
	return hex.EncodeToString(b), nil
}
