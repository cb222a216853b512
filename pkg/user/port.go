package user

import (
	"context"

	"github.com/dpang/auth-server/pkg/kernel"
)

// Repository is the narrow persistence contract of the credential store.
// Exactly the operations the auth core needs, nothing generic.
type Repository interface {
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Create inserts the user and fills in the generated ID.
	Create(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id kernel.UserID, passwordHash string) error
	Delete(ctx context.Context, id kernel.UserID) error
}
