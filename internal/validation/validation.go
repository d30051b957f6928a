// Package validation checks request fields before they reach the services.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"carecall/internal/models"
	"carecall/internal/schedule"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-]{3,40}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateUsername checks if a username is acceptable
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "username must be 3-40 characters of letters, digits, dot, dash or underscore"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateAgeGroup checks a member age group
func ValidateAgeGroup(ageGroup string) error {
	switch ageGroup {
	case models.AgeGroupMinor, models.AgeGroupAdult, models.AgeGroupSenior:
		return nil
	}
	return ValidationError{Field: "ageGroup", Message: "ageGroup must be Minor, Adult or Senior"}
}

// ValidateRole checks a user role
func ValidateRole(role string) error {
	switch role {
	case models.RoleHead, models.RoleAdult:
		return nil
	}
	return ValidationError{Field: "role", Message: "role must be HEAD_OF_FAMILY or ADULT"}
}

// ValidateDoseTime checks one HH:MM dose time
func ValidateDoseTime(t string) error {
	if !schedule.Valid(t) {
		return ValidationError{Field: "doseTime", Message: "dose time must be HH:MM in 24h format"}
	}
	return nil
}

// ValidateLogType checks a caller-supplied log type
func ValidateLogType(logType string) error {
	logType = strings.TrimSpace(logType)
	if logType == "" {
		return ValidationError{Field: "type", Message: "type is required"}
	}
	if len(logType) > 64 {
		return ValidationError{Field: "type", Message: "type must be at most 64 characters"}
	}
	return nil
}
