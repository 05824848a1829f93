// File: internal/common/validation.go
package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance for client-side precondition
// checks. Every repository validates its request struct here before touching
// the network, so an invalid form never costs a round trip.
var Validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct runs struct validation and converts failures into a
// ValidationFailed AppError carrying per-field messages in the same shape the
// backend uses, so the UI renders both identically.
func ValidateStruct(s interface{}) *AppError {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewAppError(KindValidationFailed, err.Error())
	}

	fieldErrors := FormatValidationErrors(verrs)
	return NewAppError(KindValidationFailed, FormatFieldErrors(fieldErrors)).WithDetails(fieldErrors)
}

// FormatValidationErrors converts validator.ValidationErrors into the
// field→messages map used by the error envelope.
func FormatValidationErrors(errs validator.ValidationErrors) map[string][]string {
	errorMap := make(map[string][]string)
	for _, e := range errs {
		field := strings.ToLower(e.Field())
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("The %s field is required.", field)
		case "email":
			message = fmt.Sprintf("The %s field must be a valid email address.", field)
		case "min":
			message = fmt.Sprintf("The %s field must be at least %s characters long.", field, e.Param())
		case "max":
			message = fmt.Sprintf("The %s field may not be greater than %s characters.", field, e.Param())
		case "oneof":
			message = fmt.Sprintf("The %s field must be one of the following values: %s.", field, e.Param())
		case "e164":
			message = fmt.Sprintf("The %s field must be a valid phone number.", field)
		case "eqfield":
			message = fmt.Sprintf("The %s field must match the %s field.", field, strings.ToLower(e.Param()))
		case "gt":
			message = fmt.Sprintf("The %s field must be greater than %s.", field, e.Param())
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", field, e.Tag())
		}
		errorMap[field] = append(errorMap[field], message)
	}
	return errorMap
}
