package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Field returns the message recorded for field, or "".
func (e *ValidationError) Field(field string) string {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func (e *ValidationError) add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) result() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 6

// ValidateContactInput checks a contact form before it is sent.
// It returns a *ValidationError if any rules fail, or nil if the input is valid.
func ValidateContactInput(in *ContactInput) error {
	var ve ValidationError

	if strings.TrimSpace(in.Name) == "" {
		ve.add("name", "Name is required")
	}
	if in.Email != "" && !emailPattern.MatchString(in.Email) {
		ve.add("email", "Email is invalid")
	}
	// Empty status is left to the server default.
	if in.Status != "" && !in.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", in.Status))
	}

	return ve.result()
}

// ValidateCredentials checks the login form.
func ValidateCredentials(c *Credentials) error {
	var ve ValidationError

	switch {
	case c.Email == "":
		ve.add("email", "Email is required")
	case !emailPattern.MatchString(c.Email):
		ve.add("email", "Email is invalid")
	}
	if c.Password == "" {
		ve.add("password", "Password is required")
	}

	return ve.result()
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// MinUsernameLength is the shortest username accepted at signup.
const MinUsernameLength = 3

// ValidateRegistration checks the signup form.
func ValidateRegistration(r *Registration) error {
	var ve ValidationError

	switch {
	case strings.TrimSpace(r.Username) == "":
		ve.add("username", "Username is required")
	case len(r.Username) < MinUsernameLength:
		ve.add("username", fmt.Sprintf("Username must be at least %d characters", MinUsernameLength))
	case !usernamePattern.MatchString(r.Username):
		ve.add("username", "Username can only contain letters, numbers, and underscores")
	}

	switch {
	case r.Email == "":
		ve.add("email", "Email is required")
	case !emailPattern.MatchString(r.Email):
		ve.add("email", "Email is invalid")
	}

	switch {
	case r.Password == "":
		ve.add("password", "Password is required")
	case len(r.Password) < MinPasswordLength:
		ve.add("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	case !mixedCase(r.Password):
		ve.add("password", "Password must contain at least one uppercase letter, one lowercase letter, and one number")
	}

	switch {
	case r.Confirm == "":
		ve.add("confirmPassword", "Please confirm your password")
	case r.Password != r.Confirm:
		ve.add("confirmPassword", "Passwords do not match")
	}

	return ve.result()
}

// mixedCase reports whether s has an ASCII lower, upper and digit.
func mixedCase(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}
