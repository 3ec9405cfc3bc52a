// Package password turns plaintext passwords into one-way digests and
// verifies candidates against stored digests.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher computes and verifies one-way password digests.
type Hasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches the stored digest.
	Verify(digest string, password string) bool
}

// New returns the hasher named by algorithm ("sha256" or "bcrypt").
func New(algorithm string) (Hasher, error) {
	switch algorithm {
	case "sha256":
		return SHA256{}, nil
	case "bcrypt":
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm: %q", algorithm)
	}
}

// SHA256 produces hex-encoded SHA-256 digests and compares them in
// constant time. Digests are deterministic, so two accounts with the same
// password share a digest; acceptable for this system's threat model.
type SHA256 struct{}

func (SHA256) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (SHA256) Verify(digest string, password string) bool {
	sum := sha256.Sum256([]byte(password))
	candidate := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(candidate)) == 1
}

// Bcrypt wraps x/crypto bcrypt with a configurable cost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (b Bcrypt) Verify(digest string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
