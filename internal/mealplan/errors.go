package mealplan

import "errors"

// Fallback reasons. They end up in Result.Reason and are never returned to callers.
var (
	ErrServiceUnavailable    = errors.New("generation service unavailable")
	ErrMalformedResponse     = errors.New("malformed generation response")
	ErrConstraintViolation   = errors.New("diet constraint violation")
	ErrAllergenViolation     = errors.New("allergen violation")
	ErrValidationUnavailable = errors.New("allergen validation unavailable")
	ErrContextUnavailable    = errors.New("user context unavailable")
)

// reasonCode maps a fallback cause to a stable metrics label.
func reasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrConstraintViolation):
		return "constraint_violation"
	case errors.Is(err, ErrAllergenViolation):
		return "allergen_violation"
	case errors.Is(err, ErrValidationUnavailable):
		return "validation_unavailable"
	case errors.Is(err, ErrContextUnavailable):
		return "context_unavailable"
	default:
		return "internal"
	}
}
