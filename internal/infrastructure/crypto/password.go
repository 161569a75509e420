// Package crypto provides password hashing and JWT signing for the auth
// flow, with an optional Vault-backed signing key source.
package crypto

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/elevate-edu/elevate/pkg/errors"
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher. cost below bcrypt.MinCost selects the
// bcrypt default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.ErrInvalidRequest("password must be at least 8 characters")
	}
	// bcrypt silently truncates past 72 bytes; reject instead.
	if len(password) > 72 {
		return "", errors.ErrInvalidRequest("password must be at most 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.ErrInternal("hash password").WithCause(err)
	}
	return string(hash), nil
}

// Verify compares hash against password, returning the invalid credentials
// error on mismatch.
func (h *BcryptHasher) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return errors.ErrInvalidCredentials()
	}
	return nil
}
