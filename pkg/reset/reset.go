package reset

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"

	"github.com/dpang/auth-server/pkg/errx"
)

// codeSpace is the number of distinct reset codes. Codes are rendered as
// four zero-padded digits.
const codeSpace = 10000

// GenerateCode returns a uniformly random four-digit reset code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", ErrRegistry.NewWithCause(CodeGenerationFailed, err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("RESET")

var (
	CodeNotFound         = ErrRegistry.Register("CODE_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Verification code not found or expired")
	CodeInvalidCode      = ErrRegistry.Register("INVALID_CODE", errx.TypeValidation, http.StatusBadRequest, "Verification code does not match")
	CodeGenerationFailed = ErrRegistry.Register("GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate verification code")
)

func ErrCodeNotFound() *errx.Error     { return ErrRegistry.New(CodeNotFound) }
func ErrInvalidCode() *errx.Error      { return ErrRegistry.New(CodeInvalidCode) }
func ErrGenerationFailed() *errx.Error { return ErrRegistry.New(CodeGenerationFailed) }
