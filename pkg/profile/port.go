package profile

import (
	"context"

	"github.com/dpang/auth-server/pkg/kernel"
)

// UserClient is the contract of the downstream user-profile service.
type UserClient interface {
	RegisterProfile(ctx context.Context, in RegisterProfileInput) error
	GetProfile(ctx context.Context, id kernel.UserID) (*Profile, error)
	DeleteProfile(ctx context.Context, id kernel.UserID, in DeleteProfileInput) error
}

// MileageClient is the contract of the downstream mileage service.
type MileageClient interface {
	GetMileage(ctx context.Context, id kernel.UserID) (*Mileage, error)
	DeleteMileage(ctx context.Context, id kernel.UserID) error
}
