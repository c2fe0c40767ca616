package client

import (
	"errors"
	"fmt"
)

// AuthError means the credential is missing, expired or rejected. Callers
// should send the user back through login; it is never retried.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return "authentication required: " + e.Message
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the text to show the user.
func (e *AuthError) UserMessage() string { return e.Message }

// ValidationError is a user-correctable input problem reported by the server.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the text to show the user.
func (e *ValidationError) UserMessage() string { return e.Message }

// ServerError is any other non-2xx response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the text to show the user.
func (e *ServerError) UserMessage() string { return e.Message }

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Message
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UserMessage returns the text to show the user.
func (e *NetworkError) UserMessage() string { return e.Message }

// IsAuth reports whether err is (or wraps) an *AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is (or wraps) a *NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServer reports whether err is (or wraps) a *ServerError.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
