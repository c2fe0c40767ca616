package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ActivityAction is the kind of change an activity log entry records.
type ActivityAction string

const (
	ActionCreate ActivityAction = "create"
	ActionUpdate ActivityAction = "update"
	ActionDelete ActivityAction = "delete"
)

// ActivityActions lists the known actions.
var ActivityActions = []ActivityAction{ActionCreate, ActionUpdate, ActionDelete}

// String returns the string representation of the action.
func (a ActivityAction) String() string {
	return string(a)
}

// IsValid reports whether the action is a known value.
func (a ActivityAction) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// ActivityUser is the user reference embedded in an activity.
type ActivityUser struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ActivityDetails carries the action-specific payload of an activity.
type ActivityDetails struct {
	UpdatedFields  map[string]any `json:"updatedFields,omitempty"`
	ContactData    map[string]any `json:"contactData,omitempty"`
	DeletedContact *Contact       `json:"deletedContact,omitempty"`
}

// Activity is a single audit log entry.
type Activity struct {
	ID           string           `json:"_id"`
	Action       ActivityAction   `json:"action"`
	ResourceType string           `json:"resourceType"`
	ResourceID   string           `json:"resourceId"`
	ResourceName string           `json:"resourceName"`
	User         *ActivityUser    `json:"userId,omitempty"`
	Details      *ActivityDetails `json:"details,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// GetID returns the activity's identifier.
func (a *Activity) GetID() string {
	if a == nil {
		return ""
	}
	return a.ID
}

// Username returns the acting user's name, or "Unknown User".
func (a *Activity) Username() string {
	if a.User == nil || a.User.Username == "" {
		return "Unknown User"
	}
	return a.User.Username
}

// Summary renders the details payload as short human-readable lines.
func (a *Activity) Summary() []string {
	d := a.Details
	if d == nil {
		return nil
	}
	var lines []string
	if len(d.UpdatedFields) > 0 {
		keys := make([]string, 0, len(d.UpdatedFields))
		for k := range d.UpdatedFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines = append(lines, "Updated: "+strings.Join(keys, ", "))
	}
	if d.ContactData != nil {
		lines = append(lines, fmt.Sprintf("Contact created with %d fields", len(d.ContactData)))
	}
	if d.DeletedContact != nil {
		lines = append(lines, "Contact deleted: "+d.DeletedContact.Name)
	}
	return lines
}
