package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url), the floor
	// for anything handed to an invitee.
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// ErrTokenCollision is returned by GenerateUniqueToken when every attempt
// produced a token that was already taken.
var ErrTokenCollision = errors.New("cryptox: could not generate a unique token")

// GenerateToken creates a cryptographically secure random token of the given
// byte length, encoded as unpadded base64url so it is safe in URLs and forms.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateUniqueToken draws tokens until taken reports the fingerprint as
// free, giving up after attempts draws. It returns the raw token and its
// fingerprint.
func GenerateUniqueToken(size, attempts int, taken func(fingerprint string) bool) (string, string, error) {
	if attempts <= 0 {
		attempts = 1
	}
	for range attempts {
		token, err := GenerateToken(size)
		if err != nil {
			return "", "", err
		}
		fp := FingerprintToken(token)
		if !taken(fp) {
			return token, fp, nil
		}
	}
	return "", "", ErrTokenCollision
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token.
// Only fingerprints are persisted, so a leaked table cannot be replayed.
//
// The fingerprint is returned as a base64url-encoded string (43 chars).
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
