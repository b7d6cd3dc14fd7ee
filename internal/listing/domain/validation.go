package domain

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var hostListingMessages = map[string]string{
	"Title":       "listing title must be under 100 characters",
	"Description": "listing description must be under 5000 characters",
	"Type":        "listing type must be either apartment or house",
	"Price":       "price must be greater than or equal to 0",
}

// ValidateHostListingInput checks the creation payload and returns a *ValidationError for the
// first violated rule, in the order title, description, type, price.
func ValidateHostListingInput(input HostListingInput) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return NewValidationError("", "invalid listing input: %v", err)
	}

	first := fieldErrs[0]
	if msg, ok := hostListingMessages[first.StructField()]; ok {
		return &ValidationError{Field: first.StructField(), Message: msg}
	}
	return NewValidationError(first.StructField(), "listing %s failed on the %q rule", first.Field(), first.Tag())
}
