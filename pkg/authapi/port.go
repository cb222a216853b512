package authapi

import (
	"context"

	"github.com/dpang/auth-server/pkg/kernel"
	"github.com/dpang/auth-server/pkg/profile"
	"github.com/dpang/auth-server/pkg/token"
	"github.com/dpang/auth-server/pkg/user"
)

// UserService is the slice of the user service the handlers consume.
type UserService interface {
	VerifyUser(ctx context.Context, email, plainPassword string) (kernel.UserID, error)
	Register(ctx context.Context, in user.RegisterInput) error
	ChangePassword(ctx context.Context, id kernel.UserID, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, id kernel.UserID, plainPassword string, reason []string, message string) error
	GetProfile(ctx context.Context, id kernel.UserID) (*profile.Profile, error)
	GetMileage(ctx context.Context, id kernel.UserID) (*profile.Mileage, error)
}

// TokenService is the slice of the token service the handlers consume.
type TokenService interface {
	Issue(ctx context.Context, id kernel.UserID) (*token.Pair, error)
	Refresh(ctx context.Context, id kernel.UserID, presented string) (*token.Pair, error)
	Revoke(ctx context.Context, id kernel.UserID) error
	Validate(tokenString string) (*token.AccessClaims, error)
}

// ResetService is the slice of the reset service the handlers consume.
type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}
