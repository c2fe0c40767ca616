package collection

import (
	"errors"
	"fmt"
)

// Filter field keys accepted by Controller.OnFilterFieldChange.
const (
	FieldSearch = "search"
	FieldStatus = "status"
	FieldAction = "action"
)

// ErrUnknownField is returned for a filter key the collection does not use.
var ErrUnknownField = errors.New("unknown filter field")

// Filter is the criteria a page is requested with. Contacts use Search and
// Status; activities use Action. Filter is comparable, and two filters are
// the same when their fields are equal.
type Filter struct {
	Search string `json:"search,omitempty"`
	Status string `json:"status,omitempty"`
	Action string `json:"action,omitempty"`
}

// Get returns the value of the named field.
func (f Filter) Get(key string) (string, error) {
	switch key {
	case FieldSearch:
		return f.Search, nil
	case FieldStatus:
		return f.Status, nil
	case FieldAction:
		return f.Action, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownField, key)
}

// With returns a copy of f with one field replaced.
func (f Filter) With(key, value string) (Filter, error) {
	switch key {
	case FieldSearch:
		f.Search = value
	case FieldStatus:
		f.Status = value
	case FieldAction:
		f.Action = value
	default:
		return f, fmt.Errorf("%w %q", ErrUnknownField, key)
	}
	return f, nil
}

// IsZero reports whether no criteria are set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}
