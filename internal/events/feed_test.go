package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/model"
)

var _ ContactSink = (*collection.Controller[*model.Contact, *model.ContactInput])(nil)

type recordingSink struct {
	mu      sync.Mutex
	created []*model.Contact
	updated []*model.Contact
	deleted []string
}

func (s *recordingSink) ApplyLocalCreate(c *model.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, c)
}

func (s *recordingSink) ApplyLocalUpdate(c *model.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, c)
}

func (s *recordingSink) ApplyLocalDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
}

func (s *recordingSink) counts() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created), len(s.updated), len(s.deleted)
}

func TestFeed_Apply(t *testing.T) {
	sink := &recordingSink{}
	f := NewFeed(nil, sink, nil)

	require.NoError(t, f.Apply(Message{Subject: TopicContactCreated, Data: []byte(`{"contact":{"_id":"c1","name":"Ada"}}`)}))
	require.NoError(t, f.Apply(Message{Subject: TopicContactUpdated, Data: []byte(`{"contact":{"_id":"c1","name":"Ada L"},"changes":{"name":"Ada L"}}`)}))
	require.NoError(t, f.Apply(Message{Subject: TopicContactDeleted, Data: []byte(`{"contact_id":"c1"}`)}))

	require.Len(t, sink.created, 1)
	assert.Equal(t, "Ada", sink.created[0].Name)
	require.Len(t, sink.updated, 1)
	assert.Equal(t, "Ada L", sink.updated[0].Name)
	assert.Equal(t, []string{"c1"}, sink.deleted)
}

func TestFeed_ApplyRejectsMalformed(t *testing.T) {
	sink := &recordingSink{}
	f := NewFeed(nil, sink, nil)

	for _, msg := range []Message{
		{Subject: TopicContactCreated, Data: []byte(`not json`)},
		{Subject: TopicContactCreated, Data: []byte(`{}`)},
		{Subject: TopicContactUpdated, Data: []byte(`{"contact":{"name":"no id"}}`)},
		{Subject: TopicContactDeleted, Data: []byte(`{}`)},
		{Subject: "crm.contact.merged", Data: []byte(`{}`)},
	} {
		assert.Error(t, f.Apply(msg), msg.Subject+" "+string(msg.Data))
	}
	c, u, d := sink.counts()
	assert.Zero(t, c+u+d)
}

func TestFeed_RunOverNATS(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	pub, err := NewNATSPublisher(url)
	require.NoError(t, err)
	defer pub.Close()

	sink := &recordingSink{}
	f := NewFeed(sub, sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	// Publish until the subscription is live, then the rest in order.
	require.Eventually(t, func() bool {
		_ = pub.Publish(ctx, TopicContactCreated, ContactCreated{Contact: &model.Contact{ID: "c1", Name: "Ada"}})
		c, _, _ := sink.counts()
		return c > 0
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, pub.Publish(ctx, "crm.contact.bogus", map[string]string{"x": "y"}))
	require.NoError(t, pub.Publish(ctx, TopicContactUpdated, ContactUpdated{Contact: &model.Contact{ID: "c1", Name: "Ada L"}}))
	require.NoError(t, pub.Publish(ctx, TopicContactDeleted, ContactDeleted{ContactID: "c1"}))

	require.Eventually(t, func() bool {
		_, u, d := sink.counts()
		return u == 1 && d == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
