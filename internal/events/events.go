// Package events carries contact change notifications over NATS so that
// every open contact list can patch itself without refetching.
package events

import (
	"context"

	"github.com/alfredjeanlab/crm/internal/model"
)

// Event topic constants
const (
	TopicContactCreated = "crm.contact.created"
	TopicContactUpdated = "crm.contact.updated"
	TopicContactDeleted = "crm.contact.deleted"

	// TopicContactAll matches every contact topic.
	TopicContactAll = "crm.contact.>"
)

// Event types

type ContactCreated struct {
	Contact *model.Contact `json:"contact"`
}

type ContactUpdated struct {
	Contact *model.Contact `json:"contact"`
	Changes map[string]any `json:"changes,omitempty"` // field name -> new value
}

type ContactDeleted struct {
	ContactID string `json:"contact_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
