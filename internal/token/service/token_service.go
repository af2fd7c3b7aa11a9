// Package service provides token material generation and fingerprinting.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/planexec/internal/errors"
)

// TokenService generates plain capability tokens and their fingerprints.
type TokenService interface {
	// GenerateToken creates a new plain token and its fingerprint.
	GenerateToken() (plainToken string, fingerprint string, err error)

	// Fingerprint computes the fingerprint of a plain token.
	Fingerprint(plainToken string) string
}

// tokenService implements TokenService using SHA-256 for fingerprinting.
type tokenService struct{}

// NewTokenService creates a new TokenService instance.
func NewTokenService() TokenService {
	return &tokenService{}
}

// GenerateToken creates a new cryptographically secure 32-byte random token.
// The token is base64 URL-encoded for easy transmission. Returns the plain
// token and its SHA-256 fingerprint; only the fingerprint is ever stored.
func (t *tokenService) GenerateToken() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken := base64.URLEncoding.EncodeToString(randomBytes)
	return plainToken, t.Fingerprint(plainToken), nil
}

// Fingerprint hashes a plain token using SHA-256.
// Returns the hash as a hexadecimal string.
func (t *tokenService) Fingerprint(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(hash[:])
}
