// Package utils holds small validation helpers shared across the domain
// services.
package utils

import (
	"regexp"
	"strings"
	"time"

	"github.com/tallybook/backend/internal/domain/errors"
)

// dateRegex validates ISO 8601 date strings (YYYY-MM-DD)
var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateRequiredString validates that a string is not empty
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(fieldName + " is required")
	}
	return nil
}

// ValidateISODate validates an ISO 8601 date string (YYYY-MM-DD)
func ValidateISODate(date string) error {
	if !dateRegex.MatchString(date) {
		return errors.NewValidationError("invalid date format, should be YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return errors.NewValidationError("invalid date value")
	}
	return nil
}
