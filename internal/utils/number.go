package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// AccountNumberLength is the length of generated account numbers.
const AccountNumberLength = 10

// GenerateAccountNumber generates a numeric account number with the specified prefix and length
func GenerateAccountNumber(prefix string, length int) (string, error) {
	if length < len(prefix) || length > 34 {
		return "", fmt.Errorf("invalid account number length: %d", length)
	}
	for _, c := range prefix {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("account number prefix must be numeric: %q", prefix)
		}
	}

	// Generate random digits
	digits := make([]byte, length-len(prefix))
	if _, err := rand.Read(digits); err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(prefix)
	for _, b := range digits {
		builder.WriteByte(b%10 + '0')
	}

	return builder.String(), nil
}
