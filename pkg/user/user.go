package user

import (
	"net/http"
	"time"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/kernel"
)

// User is a registered identity. The row is owned exclusively by the
// credential store; email is unique across live users and ID is immutable
// once assigned.
type User struct {
	ID           kernel.UserID `db:"user_id" json:"user_id"`
	Email        string        `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Role         kernel.Role   `db:"role" json:"role"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// RegisterInput carries everything needed to create an identity and
// replicate its profile downstream.
type RegisterInput struct {
	Email          string
	Password       string
	Role           kernel.Role
	Name           string
	EmployeeNumber int64
	JoinDate       string // ISO date, passed through to the profile service
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound    = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeEmailExists     = ErrRegistry.Register("EMAIL_EXISTS", errx.TypeConflict, http.StatusConflict, "Email is already registered")
	CodeInvalidPassword = ErrRegistry.Register("INVALID_PASSWORD", errx.TypeValidation, http.StatusBadRequest, "Password does not match")
	CodeInvalidRole     = ErrRegistry.Register("INVALID_ROLE", errx.TypeValidation, http.StatusBadRequest, "Unknown role")
)

func ErrUserNotFound() *errx.Error    { return ErrRegistry.New(CodeUserNotFound) }
func ErrEmailExists() *errx.Error     { return ErrRegistry.New(CodeEmailExists) }
func ErrInvalidPassword() *errx.Error { return ErrRegistry.New(CodeInvalidPassword) }
func ErrInvalidRole() *errx.Error     { return ErrRegistry.New(CodeInvalidRole) }
