// Package idgen generates short, URL-safe correlation IDs for outgoing
// API requests, backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// RequestPrefix is prepended to every request ID.
const RequestPrefix = "req-"

// alphabet is the character set used for the random portion of the ID.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
const Length = 12

// RequestID returns a new ID suitable for the X-Request-ID header.
func RequestID() (string, error) {
	id, err := nanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return RequestPrefix + id, nil
}

// MustRequestID is like RequestID but falls back to a fixed marker when the
// random source fails. Request IDs are diagnostic only.
func MustRequestID() string {
	id, err := RequestID()
	if err != nil {
		return RequestPrefix + "unknown"
	}
	return id
}
