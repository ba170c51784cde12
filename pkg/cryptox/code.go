package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// GenerateDigits returns a uniformly random string of n decimal digits.
func GenerateDigits(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("digit count must be positive, got %d", n)
	}

	var b strings.Builder
	b.Grow(n)
	for range n {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// GenerateGroupedDigits returns random digit groups joined by sep,
// e.g. GenerateGroupedDigits(2, 5, "-") yields "12345-67890".
func GenerateGroupedDigits(groups, size int, sep string) (string, error) {
	parts := make([]string, groups)
	for i := range parts {
		p, err := GenerateDigits(size)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	return strings.Join(parts, sep), nil
}
