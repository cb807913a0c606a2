package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

var validate = validator.New()

// Validate runs struct tag validation and maps failures to the API
// error envelope.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return apperrors.NewInternalError(err)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		return apperrors.NewValidationError("validation failed", details)
	}
	return apperrors.NewValidationError(err.Error(), nil)
}
