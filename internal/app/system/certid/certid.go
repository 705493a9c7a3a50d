// Package certid generates short certification identifiers for
// published dark-pattern-free websites. The identifier appears on the
// public certificate, so it uses an unambiguous uppercase alphanumeric
// alphabet rather than full base64.
package certid

import (
	"crypto/rand"
	"fmt"
)

const (
	// Length of a certification identifier.
	Length = 12

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// New returns a fresh random certification identifier. Uniqueness is
// enforced by the database, not here; callers retry on collision.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("certid: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// Valid reports whether s has the shape of a certification identifier.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
