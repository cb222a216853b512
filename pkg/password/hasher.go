// Package password wraps one-way salted password hashing behind a small
// port so services never touch the hashing library directly.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/dpang/auth-server/pkg/errx"
)

// Hasher creates and verifies one-way salted password hashes.
type Hasher interface {
	Hash(plain string) (string, error)
	// Compare reports whether plain matches the stored hash. The comparison
	// is constant-time; a mismatch returns (false, nil), not an error.
	Compare(hash, plain string) (bool, error)
}

// BcryptHasher implements Hasher with bcrypt. The salt is embedded in the
// produced hash, so every call to Hash yields a distinct string.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost. Costs outside
// bcrypt's valid range fall back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, errx.Wrap(err, "failed to compare password hash", errx.TypeInternal)
}
