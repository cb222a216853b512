package token

import (
	"context"

	"github.com/dpang/auth-server/pkg/kernel"
)

// SessionRepository persists the single live refresh token per user in an
// expiring store. The store's TTL is the session's natural lifetime;
// Replace and CompareAndDelete are the only mutation paths.
type SessionRepository interface {
	// Find returns the stored refresh token, or ErrTokenNotFound.
	Find(ctx context.Context, id kernel.UserID) (string, error)

	// Replace removes any existing session entry and writes a fresh one with
	// a full TTL. Delete-then-write, never an upsert over a stale TTL clock.
	Replace(ctx context.Context, id kernel.UserID, refreshToken string) error

	// CompareAndDelete atomically deletes the session iff the stored token
	// equals presented. Returns false when the entry is absent or differs;
	// of two concurrent calls with the same token at most one returns true.
	CompareAndDelete(ctx context.Context, id kernel.UserID, presented string) (bool, error)

	// Delete removes the session, reporting whether one existed.
	Delete(ctx context.Context, id kernel.UserID) (bool, error)
}

// Codec creates and parses the signed, time-bounded tokens themselves.
type Codec interface {
	GenerateAccessToken(id kernel.UserID, email string, role kernel.Role) (string, error)
	GenerateRefreshToken(email string) (string, error)
	ValidateAccessToken(tokenString string) (*AccessClaims, error)
}
