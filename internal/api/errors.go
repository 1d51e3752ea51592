package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/domain/srs"
	"github.com/micronotes/review-api/internal/service/review"
	"github.com/micronotes/review-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, review.ErrSessionNotFound),
		errors.Is(err, review.ErrAtomNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, review.ErrInvalidResponse),
		errors.Is(err, review.ErrAtomNotInSession),
		errors.Is(err, review.ErrSessionCompleted),
		errors.Is(err, srs.ErrInvalidRating),
		errors.Is(err, srs.ErrInvalidResponseTime),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, review.ErrSessionNotFound):
		return "Review session not found"

	case errors.Is(err, review.ErrAtomNotFound):
		return "Atom not found"

	case errors.Is(err, review.ErrAtomNotInSession):
		return "Atom is not part of this review session"

	case errors.Is(err, review.ErrSessionCompleted):
		return "Review session is already completed"

	case errors.Is(err, review.ErrInvalidResponse),
		errors.Is(err, srs.ErrInvalidRating),
		errors.Is(err, srs.ErrInvalidResponseTime):
		return "Invalid review response"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'StartSessionRequest.UserID' Error:Field
		// validation for 'UserID' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "gte":
		return "below the allowed minimum"
	case "lte":
		return "above the allowed maximum"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
