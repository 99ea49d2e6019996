package auth

import (
	"strings"
	"testing"
)

func TestNewTokenLengthAndAlphabet(t *testing.T) {
	for _, length := range []int{userIDLength, sessionTokenLength, 1, 100} {
		token, err := NewToken(length)
		if err != nil {
			t.Fatalf("NewToken(%d) returned error: %v", length, err)
		}
		if len(token) != length {
			t.Fatalf("NewToken(%d) returned %d characters", length, len(token))
		}
		for _, r := range token {
			if !strings.ContainsRune(tokenAlphabet, r) {
				t.Fatalf("token %q contains %q outside the alphabet", token, r)
			}
		}
	}
}

func TestNewTokenUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := NewToken(sessionTokenLength)
		if err != nil {
			t.Fatalf("NewToken returned error: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = struct{}{}
	}
}
