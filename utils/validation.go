package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/atlanticweizard/storefront/models"
)

// FieldValidationError represents a validation error for a specific field
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldValidationErrors represents multiple field validation errors
type FieldValidationErrors []FieldValidationError

// Error implements the error interface
func (e FieldValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}$`)
)

// ValidateEmail checks the email format
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateCustomerInfo validates the checkout contact/shipping record. All
// fields are required; email and phone formats are enforced.
func ValidateCustomerInfo(info models.CustomerInfo) FieldValidationErrors {
	var errs FieldValidationErrors

	required := []struct {
		field, value string
	}{
		{"firstName", info.FirstName},
		{"lastName", info.LastName},
		{"email", info.Email},
		{"phone", info.Phone},
		{"address", info.Address},
		{"city", info.City},
		{"zipCode", info.ZipCode},
		{"country", info.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, FieldValidationError{Field: f.field, Message: "is required"})
		}
	}

	if info.Email != "" && !emailRegex.MatchString(info.Email) {
		errs = append(errs, FieldValidationError{Field: "email", Message: "invalid email format"})
	}
	if info.Phone != "" && !phoneRegex.MatchString(info.Phone) {
		errs = append(errs, FieldValidationError{Field: "phone", Message: "invalid phone number"})
	}

	return errs
}
