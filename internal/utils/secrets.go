package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateSecret generates a cryptographically secure random secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWTSecret generates a 256-bit signing secret
func GenerateJWTSecret() (string, error) {
	secret, err := GenerateSecret(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return secret, nil
}

// GenerateBookingQR generates the opaque ticket token printed on a booking.
// Format: QR-YYYYMMDDHHMMSS-XXXXXXXXXXXXXXXX (16 hex chars).
// Uniqueness is enforced by the bookings.qr_code constraint.
func GenerateBookingQR() (string, error) {
	random, err := GenerateSecret(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QR-%s-%s", time.Now().UTC().Format("20060102150405"), strings.ToUpper(random)), nil
}
