// Package auth provides password hashing and session token utilities.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for password hashing.
// The cost is embedded in the digest, so it can be raised later
// without invalidating existing hashes.
const bcryptCost = 10

// HashPassword creates a bcrypt hash of the given password.
// The returned digest is self-describing: algorithm, cost and salt
// are all encoded in the string.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// CheckPassword reports whether the password matches the stored digest.
// bcrypt compares in constant time relative to the stored parameters.
// A malformed digest is treated as a failed check.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
