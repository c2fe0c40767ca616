package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alfredjeanlab/crm/internal/client"
	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/events"
	"github.com/alfredjeanlab/crm/internal/model"
)

type (
	contactsController   = collection.Controller[*model.Contact, *model.ContactInput]
	activitiesController = collection.Controller[*model.Activity, struct{}]
)

// requireSession fails fast when no usable credential is stored.
func requireSession() error {
	if current.Token() == "" {
		return &client.AuthError{Message: "not logged in"}
	}
	if current.Expired(time.Now()) {
		return &client.AuthError{Message: "session expired, please log in again"}
	}
	return nil
}

func newContactsController(onChange func(collection.Snapshot[*model.Contact])) (*contactsController, error) {
	g := &client.ContactsGateway{Client: crmClient}
	return collection.New(collection.Config[*model.Contact, *model.ContactInput]{
		Name:     "contacts",
		Source:   g,
		Mutator:  g,
		Exporter: g,
		PageSize: cfg.ContactsPageSize,
		Fields:   []string{collection.FieldSearch, collection.FieldStatus},
		Debounce: cfg.SearchDebounce,
		Logger:   logger,
		OnChange: onChange,
	})
}

func newActivitiesController() (*activitiesController, error) {
	return collection.New(collection.Config[*model.Activity, struct{}]{
		Name:     "activities",
		Source:   &client.ActivitiesGateway{Client: crmClient},
		PageSize: cfg.ActivitiesPageSize,
		Fields:   []string{collection.FieldAction},
		Logger:   logger,
	})
}

// loadPages does a fresh load with f and keeps loading until pages pages are
// cached, everything is loaded (all), or a load fails.
func loadPages[T collection.Item, A any](ctrl *collection.Controller[T, A], f collection.Filter, pages int, all bool) (collection.Snapshot[T], error) {
	if err := ctrl.LoadFresh(f); err != nil {
		return collection.Snapshot[T]{}, err
	}
	ctrl.Wait()
	snap := ctrl.Snapshot()
	for snap.Err == nil && snap.HasMore && (all || snap.Page < pages) {
		if err := ctrl.LoadMore(); err != nil {
			return snap, err
		}
		ctrl.Wait()
		snap = ctrl.Snapshot()
	}
	return snap, snap.Err
}

// findContact pages through the unfiltered contact list until id is found.
func findContact(id string) (*model.Contact, error) {
	ctrl, err := newContactsController(nil)
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()

	if err := ctrl.LoadFresh(collection.Filter{}); err != nil {
		return nil, err
	}
	for {
		ctrl.Wait()
		snap := ctrl.Snapshot()
		if snap.Err != nil {
			return nil, snap.Err
		}
		for _, c := range snap.Items {
			if c.ID == id {
				return c, nil
			}
		}
		if !snap.HasMore {
			return nil, fmt.Errorf("contact %s not found", id)
		}
		if err := ctrl.LoadMore(); err != nil {
			return nil, err
		}
	}
}

// announce tells other watchers about a change. Failures only warn: the
// change itself already succeeded.
func announce(ctx context.Context, topic string, event any) {
	if cfg.NATSURL == "" {
		return
	}
	var pub events.Publisher = &events.NoopPublisher{}
	if p, err := events.NewNATSPublisher(cfg.NATSURL); err != nil {
		logger.Warn("not announcing change", "topic", topic, "err", err)
	} else {
		pub = p
	}
	defer pub.Close()
	if err := pub.Publish(ctx, topic, event); err != nil {
		logger.Warn("announcing change failed", "topic", topic, "err", err)
	}
}
