package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/model"
)

type fieldChange struct{ key, value string }

// fakeView records what the browser asks of the controller.
type fakeView struct {
	snap      collection.Snapshot[*model.Contact]
	csv       []byte
	exportErr error

	starts    int
	fresh     []collection.Filter
	more      int
	deleted   []string
	created   []model.ContactInput
	updated   map[string]model.ContactInput
	changes   []fieldChange
	submits   int
	dismissed int
	waits     int
}

func (v *fakeView) Start() error { v.starts++; return nil }

func (v *fakeView) LoadFresh(f collection.Filter) error {
	v.fresh = append(v.fresh, f)
	return nil
}

func (v *fakeView) LoadMore() error                               { v.more++; return nil }
func (v *fakeView) Delete(id string) error                        { v.deleted = append(v.deleted, id); return nil }
func (v *fakeView) SubmitSearch() error                           { v.submits++; return nil }
func (v *fakeView) DismissError()                                 { v.dismissed++ }
func (v *fakeView) Wait()                                         { v.waits++ }
func (v *fakeView) Snapshot() collection.Snapshot[*model.Contact] { return v.snap }

func (v *fakeView) Export(ctx context.Context) ([]byte, error) {
	return v.csv, v.exportErr
}

func (v *fakeView) Create(in *model.ContactInput) error {
	v.created = append(v.created, *in)
	return nil
}

func (v *fakeView) Update(id string, in *model.ContactInput) error {
	if v.updated == nil {
		v.updated = map[string]model.ContactInput{}
	}
	v.updated[id] = *in
	return nil
}

func (v *fakeView) OnFilterFieldChange(key, value string) error {
	if key != collection.FieldSearch && key != collection.FieldStatus {
		return collection.ErrUnknownField
	}
	v.changes = append(v.changes, fieldChange{key, value})
	return nil
}

func newTestBrowser() (*browser, *fakeView, *bytes.Buffer) {
	v := &fakeView{snap: collection.Snapshot[*model.Contact]{
		Items: []*model.Contact{{
			ID: "c1", Name: "Ada Lovelace", Email: "ada@example.com",
			Phone: "555-0100", Status: model.StatusLead,
		}},
		TotalCount: 1,
		Page:       1,
	}}
	var out bytes.Buffer
	return &browser{ctrl: v, out: &out}, v, &out
}

func TestBrowserExec(t *testing.T) {
	ctx := context.Background()

	t.Run("more with nothing left", func(t *testing.T) {
		b, v, out := newTestBrowser()
		quit, err := b.exec(ctx, "n")
		require.NoError(t, err)
		assert.False(t, quit)
		assert.Zero(t, v.more)
		assert.Contains(t, out.String(), "All contacts loaded.")
	})

	t.Run("more", func(t *testing.T) {
		b, v, out := newTestBrowser()
		v.snap.HasMore = true
		_, err := b.exec(ctx, "more")
		require.NoError(t, err)
		assert.Equal(t, 1, v.more)
		assert.Equal(t, 1, v.waits)
		assert.Contains(t, out.String(), "Ada Lovelace")
	})

	t.Run("search submits immediately", func(t *testing.T) {
		b, v, _ := newTestBrowser()
		_, err := b.exec(ctx, "/ada")
		require.NoError(t, err)
		assert.Equal(t, []fieldChange{{collection.FieldSearch, "ada"}}, v.changes)
		assert.Equal(t, 1, v.submits)
	})

	t.Run("status", func(t *testing.T) {
		b, v, _ := newTestBrowser()
		_, err := b.exec(ctx, "status customer")
		require.NoError(t, err)
		assert.Equal(t, []fieldChange{{collection.FieldStatus, "Customer"}}, v.changes)

		_, err = b.exec(ctx, "f all")
		require.NoError(t, err)
		assert.Equal(t, fieldChange{collection.FieldStatus, ""}, v.changes[1])

		_, err = b.exec(ctx, "status vip")
		assert.Error(t, err)
		assert.Len(t, v.changes, 2)
	})

	t.Run("reload uses applied filter", func(t *testing.T) {
		b, v, _ := newTestBrowser()
		v.snap.Applied = collection.Filter{Search: "ada"}
		_, err := b.exec(ctx, "r")
		require.NoError(t, err)
		assert.Equal(t, []collection.Filter{{Search: "ada"}}, v.fresh)
	})

	t.Run("delete", func(t *testing.T) {
		b, v, _ := newTestBrowser()
		_, err := b.exec(ctx, "d")
		assert.Error(t, err)
		_, err = b.exec(ctx, "d c1")
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, v.deleted)
	})

	t.Run("add", func(t *testing.T) {
		b, v, out := newTestBrowser()
		b.in = bufio.NewScanner(strings.NewReader("Grace Hopper\ngrace@example.com\n\nNavy\ncustomer\n\n"))
		_, err := b.exec(ctx, "a")
		require.NoError(t, err)

		require.Len(t, v.created, 1)
		assert.Equal(t, model.ContactInput{
			Name:    "Grace Hopper",
			Email:   "grace@example.com",
			Company: "Navy",
			Status:  model.StatusCustomer,
		}, v.created[0])
		assert.Contains(t, out.String(), "Status [Lead]: ")
		assert.Equal(t, 1, v.waits)
	})

	t.Run("add rejects invalid input", func(t *testing.T) {
		b, v, out := newTestBrowser()
		b.in = bufio.NewScanner(strings.NewReader("\nnot-an-email\n\n\n\n\n"))
		_, err := b.exec(ctx, "add")
		require.NoError(t, err)

		assert.Empty(t, v.created)
		assert.Contains(t, out.String(), "Error: invalid input")
		assert.Contains(t, out.String(), "name: Name is required")
		assert.Contains(t, out.String(), "email: Email is invalid")
	})

	t.Run("add without input", func(t *testing.T) {
		b, v, _ := newTestBrowser()
		_, err := b.exec(ctx, "a")
		assert.Error(t, err)
		assert.Empty(t, v.created)
	})

	t.Run("edit seeds the form", func(t *testing.T) {
		b, v, out := newTestBrowser()
		b.in = bufio.NewScanner(strings.NewReader("\nada@new.example.com\n-\n\nprospect\n\n"))
		_, err := b.exec(ctx, "edit c1")
		require.NoError(t, err)

		assert.Equal(t, map[string]model.ContactInput{"c1": {
			Name:   "Ada Lovelace",
			Email:  "ada@new.example.com",
			Status: model.StatusProspect,
		}}, v.updated)
		assert.Contains(t, out.String(), "Name [Ada Lovelace]: ")
	})

	t.Run("edit needs a loaded contact", func(t *testing.T) {
		b, v, _ := newTestBrowser()
		_, err := b.exec(ctx, "edit")
		assert.Error(t, err)
		_, err = b.exec(ctx, "edit c9")
		assert.ErrorContains(t, err, "not loaded")
		assert.Empty(t, v.updated)
	})

	t.Run("export writes a file", func(t *testing.T) {
		b, v, out := newTestBrowser()
		v.csv = []byte("name,email\nAda,ada@example.com\n")
		dir := t.TempDir()
		_, err := b.exec(ctx, "x "+dir)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(dir, "contacts.csv"))
		require.NoError(t, err)
		assert.Equal(t, v.csv, data)
		assert.Contains(t, out.String(), "Exported 31 bytes")
	})

	t.Run("export failure shows the list", func(t *testing.T) {
		b, v, out := newTestBrowser()
		v.exportErr = errors.New("boom")
		v.snap.State = collection.Failed("Failed to export contacts")
		_, err := b.exec(ctx, "x")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Failed to export contacts")
	})

	t.Run("dismiss, help and quit", func(t *testing.T) {
		b, v, out := newTestBrowser()
		_, err := b.exec(ctx, "e")
		require.NoError(t, err)
		assert.Equal(t, 1, v.dismissed)

		_, err = b.exec(ctx, "?")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "load the next page")

		quit, err := b.exec(ctx, "quit")
		require.NoError(t, err)
		assert.True(t, quit)
	})

	t.Run("unknown", func(t *testing.T) {
		b, _, _ := newTestBrowser()
		_, err := b.exec(ctx, "frobnicate")
		assert.ErrorContains(t, err, "unknown command")
	})
}

func TestBrowserRun(t *testing.T) {
	b, v, out := newTestBrowser()
	err := b.run(context.Background(), strings.NewReader("bogus\n/ada\nq\nn\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, v.starts)
	assert.Equal(t, 1, v.submits)
	assert.Zero(t, v.more, "commands after quit are not read")
	assert.Contains(t, out.String(), "unknown command")
	assert.Contains(t, out.String(), "Showing 1 of 1 contacts")
}

func TestBrowserRunAddReadsFormFromSameInput(t *testing.T) {
	b, v, _ := newTestBrowser()
	err := b.run(context.Background(), strings.NewReader("a\nGrace Hopper\n\n\n\n\n\nq\n"))
	require.NoError(t, err)

	require.Len(t, v.created, 1)
	assert.Equal(t, "Grace Hopper", v.created[0].Name)
	assert.Equal(t, model.StatusLead, v.created[0].Status)
}

func TestBrowserRunEOF(t *testing.T) {
	b, _, _ := newTestBrowser()
	assert.NoError(t, b.run(context.Background(), strings.NewReader("")))
}
