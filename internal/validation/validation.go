package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)
)

// DateLayout is the form-input date format used across the app
const DateLayout = "2006-01-02"

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
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

// ValidateUsername checks if a mention handle is valid. Usernames are
// matched case-sensitively, so no case folding happens here.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if len(username) < 2 {
		return ValidationError{Field: "username", Message: "username must be at least 2 characters"}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "username may only contain letters, digits, '-', '_' and '.'"}
	}
	return nil
}

// ValidateTitle checks a required title field
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD form value, reporting a ValidationError
// for empty or malformed input
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ValidationError{Field: field, Message: "date is required"}
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, ValidationError{Field: field, Message: "invalid date, expected YYYY-MM-DD"}
	}
	return t, nil
}
