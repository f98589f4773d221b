package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"transit/pkg/apperror"
)

// writeAppError renders an *apperror.Error as the uniform error body, per
// spec.md §6, at the HTTP status its code maps to.
func writeAppError(c *fiber.Ctx, err *apperror.Error) error {
	body := ErrorResponse{Error: ErrorBody{
		Code:    string(err.Code),
		Message: err.Message,
	}}
	if len(err.Details) > 0 {
		body.Error.Details = err.Details
	}
	return c.Status(err.HTTPStatus()).JSON(body)
}

// writeValidationError renders a 400 VALIDATION_ERROR with a field-level
// details list, per spec.md §6: "Validation error details list {path,
// message}".
func writeValidationError(c *fiber.Ctx, fields ...FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: ErrorBody{
			Code:    "VALIDATION_ERROR",
			Message: "request failed validation",
			Details: fields,
		},
	})
}
