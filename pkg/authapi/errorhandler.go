package authapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dpang/auth-server/pkg/errx"
	"github.com/dpang/auth-server/pkg/logx"
)

// ErrorHandler renders every error escaping a handler as a JSON envelope.
// Registered errx errors keep their code and suggested status; anything else
// is masked as an internal error.
func ErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get(fiber.HeaderXRequestID),
	}).WithError(err).Error("request failed")

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"status":  fe.Code,
			"message": fe.Message,
			"code":    "FIBER_ERROR",
		})
	}

	if e, ok := errx.As(err); ok {
		resp := fiber.Map{
			"status":  e.HTTPStatus,
			"message": e.Message,
			"code":    e.Code,
			"type":    e.Type.String(),
		}
		if len(e.Details) > 0 {
			resp["details"] = e.Details
		}
		return c.Status(e.HTTPStatus).JSON(resp)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  fiber.StatusInternalServerError,
		"message": "An unexpected error occurred",
		"code":    "INTERNAL_ERROR",
	})
}
