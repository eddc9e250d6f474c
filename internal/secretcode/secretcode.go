// Package secretcode hashes and verifies the per-confession secret codes
// that gate edit and delete. Codes are hashed with bcrypt so a leaked
// database does not expose them; the salt lives inside the digest.
package secretcode

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the minimum accepted secret code length in runes.
const MinLength = 4

// hashCost matches the 10 salt rounds the legacy deployment used, so
// existing digests keep verifying.
const hashCost = 10

// ErrTooShort is returned by Hash for secrets shorter than MinLength.
var ErrTooShort = fmt.Errorf("secret code must be at least %d characters", MinLength)

// Hash derives a salted bcrypt digest from a plaintext secret code.
func Hash(secret string) (string, error) {
	if utf8.RuneCountInString(secret) < MinLength {
		return "", ErrTooShort
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret code: %w", err)
	}
	return string(digest), nil
}

// Verify checks a plaintext secret code against a stored digest. A mismatch
// returns (false, nil); an error means the stored digest is unreadable.
func Verify(secret, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("malformed secret code digest: %w", err)
	}
}
