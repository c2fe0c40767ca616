package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/model"
)

func TestContactsGateway_List(t *testing.T) {
	h := &testHandler{
		responseBody: `{"contacts": [{"_id": "c1", "name": "Ada", "status": "Lead"}], "totalContacts": 11}`,
	}
	c, srv := newTestClient(h, tokenSession())
	defer srv.Close()

	g := &ContactsGateway{Client: c}
	page, err := g.List(context.Background(), collection.Filter{Search: "ad", Status: "Lead"}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "limit=10&page=2&search=ad&status=Lead", h.query)
	assert.Equal(t, 11, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c1", page.Items[0].ID)
}

func TestContactsGateway_ListRejectsUnknownStatus(t *testing.T) {
	h := &testHandler{}
	c, srv := newTestClient(h, tokenSession())
	defer srv.Close()

	g := &ContactsGateway{Client: c}
	_, err := g.List(context.Background(), collection.Filter{Status: "Churned"}, 1, 10)
	require.Error(t, err)
	assert.Equal(t, 0, h.calls)
}

func TestContactsGateway_CreateValidatesLocally(t *testing.T) {
	h := &testHandler{}
	c, srv := newTestClient(h, tokenSession())
	defer srv.Close()

	g := &ContactsGateway{Client: c}
	_, err := g.Create(context.Background(), &model.ContactInput{Email: "not-an-email"})
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Name is required", ve.Field("name"))
	assert.Equal(t, 0, h.calls)
}

func TestContactsGateway_Update(t *testing.T) {
	h := &testHandler{responseBody: `{"contact": {"_id": "c1", "name": "Ada L", "status": "Customer"}}`}
	c, srv := newTestClient(h, tokenSession())
	defer srv.Close()

	g := &ContactsGateway{Client: c}
	got, err := g.Update(context.Background(), "c1", &model.ContactInput{Name: "Ada L", Status: model.StatusCustomer})
	require.NoError(t, err)
	assert.Equal(t, "PUT", h.method)
	assert.Equal(t, "Ada L", got.Name)
}

func TestActivitiesGateway_List(t *testing.T) {
	h := &testHandler{
		responseBody: `{"activities": [{"_id": "a1", "action": "delete", "userId": {"username": "ada"}}], "totalActivities": 1}`,
	}
	c, srv := newTestClient(h, tokenSession())
	defer srv.Close()

	g := &ActivitiesGateway{Client: c}
	page, err := g.List(context.Background(), collection.Filter{Action: "delete"}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "action=delete&limit=20&page=1", h.query)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ada", page.Items[0].Username())

	_, err = g.List(context.Background(), collection.Filter{Action: "archive"}, 1, 20)
	assert.Error(t, err)
}

// A controller wired to the HTTP gateway surfaces server messages verbatim.
func TestContactsController_ServerError(t *testing.T) {
	h := &testHandler{statusCode: 500, responseBody: `{"message": "Failed to fetch contacts"}`}
	c, srv := newTestClient(h, tokenSession())
	defer srv.Close()

	g := &ContactsGateway{Client: c}
	ctrl, err := collection.New(collection.Config[*model.Contact, *model.ContactInput]{
		Source:   g,
		Mutator:  g,
		Exporter: g,
		PageSize: 10,
	})
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.Start())
	ctrl.Wait()
	snap := ctrl.Snapshot()
	assert.Equal(t, collection.Failed("Failed to fetch contacts"), snap.State)
	assert.True(t, IsServer(snap.Err))
}
