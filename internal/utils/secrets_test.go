package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret(16)
	require.NoError(t, err)
	assert.Len(t, secret, 32)

	other, err := GenerateSecret(16)
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestGenerateJWTSecret(t *testing.T) {
	secret, err := GenerateJWTSecret()
	require.NoError(t, err)
	assert.Len(t, secret, 64)
}

func TestGenerateBookingQR(t *testing.T) {
	pattern := regexp.MustCompile(`^QR-\d{14}-[0-9A-F]{16}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		qr, err := GenerateBookingQR()
		require.NoError(t, err)
		assert.Regexp(t, pattern, qr)
		assert.False(t, seen[qr], "duplicate QR code %s", qr)
		seen[qr] = true
	}
}
