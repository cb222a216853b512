// Package authapi exposes the authentication service over HTTP. Handlers
// translate between the wire DTOs and the service layer; authorization
// decisions stay here, business rules stay in the services.
package authapi

import (
	"net/http"

	"github.com/dpang/auth-server/pkg/errx"
)

// BaseResponse is the envelope for operations without a payload.
type BaseResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// DataResponse is the envelope for operations that return data.
type DataResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeUnauthorized     = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthorization, http.StatusUnauthorized, "Authentication required")
	CodeForbidden        = ErrRegistry.Register("FORBIDDEN", errx.TypeAuthorization, http.StatusForbidden, "Access denied")
	CodeMalformedRequest = ErrRegistry.Register("MALFORMED_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Malformed request")
)

func ErrUnauthorized() *errx.Error     { return ErrRegistry.New(CodeUnauthorized) }
func ErrForbidden() *errx.Error        { return ErrRegistry.New(CodeForbidden) }
func ErrMalformedRequest() *errx.Error { return ErrRegistry.New(CodeMalformedRequest) }
