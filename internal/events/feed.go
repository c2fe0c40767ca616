package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/crm/internal/model"
)

// ContactSink is what a Feed patches. A contacts collection.Controller
// satisfies it.
type ContactSink interface {
	ApplyLocalCreate(c *model.Contact)
	ApplyLocalUpdate(c *model.Contact)
	ApplyLocalDelete(id string)
}

// Feed applies contact events from a Subscriber to a ContactSink.
type Feed struct {
	sub    Subscriber
	sink   ContactSink
	logger *slog.Logger
}

func NewFeed(sub Subscriber, sink ContactSink, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{sub: sub, sink: sink, logger: logger}
}

// Run subscribes to all contact topics and applies events until ctx is
// done. Malformed events are logged and skipped.
func (f *Feed) Run(ctx context.Context) error {
	ch, cancel, err := f.sub.Subscribe(TopicContactAll)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := f.Apply(msg); err != nil {
				f.logger.Warn("skipping contact event", "subject", msg.Subject, "err", err)
			}
		}
	}
}

// Apply decodes one event and patches the sink.
func (f *Feed) Apply(msg Message) error {
	switch msg.Subject {
	case TopicContactCreated:
		var ev ContactCreated
		if err := decode(msg.Data, &ev); err != nil {
			return err
		}
		if ev.Contact.GetID() == "" {
			return errors.New("event has no contact")
		}
		f.sink.ApplyLocalCreate(ev.Contact)
	case TopicContactUpdated:
		var ev ContactUpdated
		if err := decode(msg.Data, &ev); err != nil {
			return err
		}
		if ev.Contact.GetID() == "" {
			return errors.New("event has no contact")
		}
		f.sink.ApplyLocalUpdate(ev.Contact)
	case TopicContactDeleted:
		var ev ContactDeleted
		if err := decode(msg.Data, &ev); err != nil {
			return err
		}
		if ev.ContactID == "" {
			return errors.New("event has no contact_id")
		}
		f.sink.ApplyLocalDelete(ev.ContactID)
	default:
		return fmt.Errorf("unknown subject %q", msg.Subject)
	}
	f.logger.Debug("applied contact event", "subject", msg.Subject)
	return nil
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}
	return nil
}
