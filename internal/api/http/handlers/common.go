package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

// parseAndValidate decodes the JSON body and runs struct validation,
// returning a VALIDATION_FAILED error with per-field details on failure.
func parseAndValidate(c *fiber.Ctx, validate *validator.Validate, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(dest); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details := make(map[string]any, len(fieldErrs))
			for _, fe := range fieldErrs {
				details[fe.Field()] = fe.Tag()
			}
			return apperrors.NewValidationError("validation failed", details)
		}
		return apperrors.NewValidationError("validation failed", nil)
	}
	return nil
}
