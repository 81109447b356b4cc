// Package token generates opaque random tokens for sessions and
// password resets.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Length is the number of random bytes in a token. The hex encoding
// doubles it, so tokens are 40 characters long on the wire.
const Length = 20

// New returns a hex-encoded random token.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
