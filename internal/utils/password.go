package utils

import (
	"crypto/subtle" // Constant time comparison for legacy rows
	"strings"       // Prefix checks

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// IsPasswordHash reports whether stored looks like a bcrypt hash rather than a plaintext secret
func IsPasswordHash(stored string) bool {
	if len(stored) != 60 {
		return false
	}
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// CheckPassword compares a candidate password with a stored value.
// Plaintext values left by older databases are compared in constant time;
// needsRehash tells the caller to replace such a value with a hash.
func CheckPassword(stored, candidate string) (ok bool, needsRehash bool) {
	if IsPasswordHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil, false
	}
	match := subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
	return match, match
}
