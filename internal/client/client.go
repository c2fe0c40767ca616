// Package client provides the gateway interface to the CRM REST backend and an
// HTTP/JSON implementation of it.
package client

import (
	"context"

	"github.com/alfredjeanlab/crm/internal/model"
)

// CRMClient is the interface every CLI command and collection gateway uses to
// talk to the backend. It is implemented by HTTPClient.
type CRMClient interface {
	// Auth
	Login(ctx context.Context, creds *model.Credentials) (*model.AuthResult, error)
	Signup(ctx context.Context, reg *model.Registration) (*model.AuthResult, error)

	// Contacts
	ListContacts(ctx context.Context, req *ListContactsRequest) (*ListContactsResponse, error)
	CreateContact(ctx context.Context, in *model.ContactInput) (*model.Contact, error)
	UpdateContact(ctx context.Context, id string, in *model.ContactInput) (*model.Contact, error)
	DeleteContact(ctx context.Context, id string) error
	ExportContacts(ctx context.Context) ([]byte, error)

	// Activities
	ListActivities(ctx context.Context, req *ListActivitiesRequest) (*ListActivitiesResponse, error)

	// Lifecycle
	Close() error
}

// ListContactsRequest holds parameters for listing contacts. Zero values are
// omitted from the query string.
type ListContactsRequest struct {
	Page   int
	Limit  int
	Search string
	Status model.ContactStatus
}

// ListContactsResponse is one page of contacts plus the filtered total.
type ListContactsResponse struct {
	Contacts []*model.Contact `json:"contacts"`
	Total    int              `json:"totalContacts"`
}

// ListActivitiesRequest holds parameters for listing activities.
type ListActivitiesRequest struct {
	Page   int
	Limit  int
	Action model.ActivityAction
}

// ListActivitiesResponse is one page of activities plus the filtered total.
type ListActivitiesResponse struct {
	Activities []*model.Activity `json:"activities"`
	Total      int               `json:"totalActivities"`
}
