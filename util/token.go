// Package util contains small helpers shared across the application
package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns n random bytes hex-encoded. Used for the
// single-use email verification tokens
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
