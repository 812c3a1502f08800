// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"github.com/go-playground/validator/v10"
)

// getValidationErrorMessage returns a human-readable validation error message
func getValidationErrorMessage(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()

	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must have at least " + err.Param() + " items or characters"
	case "max":
		return field + " must have at most " + err.Param() + " items or characters"
	case "oneof":
		return field + " must be one of: " + err.Param()
	case "uuid4":
		return field + " must be a valid UUID"
	case "creation_name":
		return field + " must be 3-30 characters using letters, digits, umlauts, spaces, or dashes"
	default:
		return field + " is invalid"
	}
}
