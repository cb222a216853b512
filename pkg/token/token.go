package token

import (
	"net/http"
	"time"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/kernel"
)

// Pair is one issuance result: a short-lived access token carrying
// authorization claims and a longer-lived refresh token used only to mint
// the next pair. Neither is persisted beyond the refresh token string held
// in the session store.
type Pair struct {
	Role         kernel.Role `json:"role"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// AccessClaims is the decoded, verified claim set of an access token.
type AccessClaims struct {
	UserID    kernel.UserID `json:"user_id"`
	Email     string        `json:"email"`
	Role      kernel.Role   `json:"role"`
	IssuedAt  time.Time     `json:"iat"`
	ExpiresAt time.Time     `json:"exp"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("TOKEN")

var (
	CodeTokenNotFound       = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "No session exists for this user")
	CodeInvalidRefreshToken = ErrRegistry.Register("INVALID_REFRESH", errx.TypeValidation, http.StatusBadRequest, "Invalid refresh token")
	CodeGenerationFailed    = ErrRegistry.Register("GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Token generation failed")
	CodeValidationFailed    = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeAuthorization, http.StatusUnauthorized, "Token validation failed")
)

func ErrTokenNotFound() *errx.Error       { return ErrRegistry.New(CodeTokenNotFound) }
func ErrInvalidRefreshToken() *errx.Error { return ErrRegistry.New(CodeInvalidRefreshToken) }
func ErrGenerationFailed() *errx.Error    { return ErrRegistry.New(CodeGenerationFailed) }
func ErrValidationFailed() *errx.Error    { return ErrRegistry.New(CodeValidationFailed) }
