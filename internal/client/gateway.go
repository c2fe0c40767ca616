package client

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/model"
)

// ContactsGateway exposes the contact endpoints of a CRMClient as a
// collection Source, Mutator and Exporter.
type ContactsGateway struct {
	Client CRMClient
}

var (
	_ collection.Source[*model.Contact]                       = (*ContactsGateway)(nil)
	_ collection.Mutator[*model.Contact, *model.ContactInput] = (*ContactsGateway)(nil)
	_ collection.Exporter                                     = (*ContactsGateway)(nil)
	_ collection.Source[*model.Activity]                      = (*ActivitiesGateway)(nil)
)

// ContactFilter converts collection criteria into a contact filter.
func ContactFilter(f collection.Filter) (model.ContactFilter, error) {
	cf := model.ContactFilter{Search: f.Search, Status: model.ContactStatus(f.Status)}
	if cf.Status != "" && !cf.Status.IsValid() {
		return cf, fmt.Errorf("invalid status %q", f.Status)
	}
	return cf, nil
}

func (g *ContactsGateway) List(ctx context.Context, f collection.Filter, page, pageSize int) (collection.Page[*model.Contact], error) {
	cf, err := ContactFilter(f)
	if err != nil {
		return collection.Page[*model.Contact]{}, err
	}
	resp, err := g.Client.ListContacts(ctx, &ListContactsRequest{
		Page:   page,
		Limit:  pageSize,
		Search: cf.Search,
		Status: cf.Status,
	})
	if err != nil {
		return collection.Page[*model.Contact]{}, err
	}
	return collection.Page[*model.Contact]{Items: resp.Contacts, Total: resp.Total}, nil
}

// Create validates the input locally before sending it.
func (g *ContactsGateway) Create(ctx context.Context, in *model.ContactInput) (*model.Contact, error) {
	if err := model.ValidateContactInput(in); err != nil {
		return nil, err
	}
	return g.Client.CreateContact(ctx, in)
}

// Update validates the input locally before sending it.
func (g *ContactsGateway) Update(ctx context.Context, id string, in *model.ContactInput) (*model.Contact, error) {
	if err := model.ValidateContactInput(in); err != nil {
		return nil, err
	}
	return g.Client.UpdateContact(ctx, id, in)
}

func (g *ContactsGateway) Delete(ctx context.Context, id string) error {
	return g.Client.DeleteContact(ctx, id)
}

func (g *ContactsGateway) Export(ctx context.Context) ([]byte, error) {
	return g.Client.ExportContacts(ctx)
}

// ActivitiesGateway exposes the activity log of a CRMClient as a read-only
// collection Source.
type ActivitiesGateway struct {
	Client CRMClient
}

// ActivityFilter converts collection criteria into an activity filter.
func ActivityFilter(f collection.Filter) (model.ActivityFilter, error) {
	af := model.ActivityFilter{Action: model.ActivityAction(f.Action)}
	if af.Action != "" && !af.Action.IsValid() {
		return af, fmt.Errorf("invalid action %q", f.Action)
	}
	return af, nil
}

func (g *ActivitiesGateway) List(ctx context.Context, f collection.Filter, page, pageSize int) (collection.Page[*model.Activity], error) {
	af, err := ActivityFilter(f)
	if err != nil {
		return collection.Page[*model.Activity]{}, err
	}
	resp, err := g.Client.ListActivities(ctx, &ListActivitiesRequest{
		Page:   page,
		Limit:  pageSize,
		Action: af.Action,
	})
	if err != nil {
		return collection.Page[*model.Activity]{}, err
	}
	return collection.Page[*model.Activity]{Items: resp.Activities, Total: resp.Total}, nil
}
