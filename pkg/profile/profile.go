// Package profile talks to the downstream user-profile and mileage services.
// The auth core treats both as external collaborators: failures surface as
// errors, and nothing here rolls back local state.
package profile

import (
	"net/http"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/kernel"
)

// Profile is the subset of the downstream user record the login flow reads.
type Profile struct {
	UserID kernel.UserID `json:"user_id"`
	Name   string        `json:"name"`
}

// Mileage is the downstream mileage balance for a user.
type Mileage struct {
	Mileage                int64 `json:"mileage"`
	PersonalChargedMileage int64 `json:"personal_charged_mileage"`
}

// RegisterProfileInput replicates a freshly registered identity downstream.
type RegisterProfileInput struct {
	UserID         kernel.UserID `json:"user_id"`
	Email          string        `json:"email"`
	Name           string        `json:"name"`
	EmployeeNumber int64         `json:"employee_number"`
	JoinDate       string        `json:"join_date"`
}

// DeleteProfileInput carries the exit survey collected on account deletion.
type DeleteProfileInput struct {
	Reason  []string `json:"reason"`
	Message string   `json:"message"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("PROFILE")

var (
	CodeReplicationFailed = ErrRegistry.Register("REPLICATION_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to replicate user to profile service")
	CodeLookupFailed      = ErrRegistry.Register("LOOKUP_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to fetch data from downstream service")
	CodeMileageNotFound   = ErrRegistry.Register("MILEAGE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Mileage record not found")
	CodeDeleteFailed      = ErrRegistry.Register("DELETE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Failed to delete downstream record")
)

func ErrReplicationFailed() *errx.Error { return ErrRegistry.New(CodeReplicationFailed) }
func ErrLookupFailed() *errx.Error      { return ErrRegistry.New(CodeLookupFailed) }
func ErrMileageNotFound() *errx.Error   { return ErrRegistry.New(CodeMileageNotFound) }
func ErrDeleteFailed() *errx.Error      { return ErrRegistry.New(CodeDeleteFailed) }
