package auth

import (
	"crypto/rand"
	"fmt"
)

const (
	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	sessionTokenLength = 40
	userIDLength       = 15
)

// NewToken generates a cryptographically secure opaque token of the given
// length over digits and lowercase letters.
func NewToken(length int) (string, error) {
	// Largest multiple of len(tokenAlphabet) below 256; bytes at or above it
	// are rejected to avoid modulo bias.
	const limit = 252

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
