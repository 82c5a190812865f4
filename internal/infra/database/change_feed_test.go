package database

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/pkg/logging"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	ch chan *pq.Notification
}

func (f *fakeSource) NotificationChannel() <-chan *pq.Notification { return f.ch }
func (f *fakeSource) Close() error                                 { return nil }

func receive(t *testing.T, ch <-chan entity.LeadChange) entity.LeadChange {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("no change received")
		return entity.LeadChange{}
	}
}

func TestChangeFeedDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	leads := map[string]*entity.Lead{
		"lead-1": {ID: "lead-1", AssignedAgentID: "agent-ann"},
	}
	load := func(_ context.Context, id string) (*entity.Lead, error) {
		if l, ok := leads[id]; ok {
			return l, nil
		}
		return nil, entity.ErrLeadNotFound
	}

	src := &fakeSource{ch: make(chan *pq.Notification, 4)}
	feed := newChangeFeed(src, load, logging.NewWithWriter(io.Discard, "error"))
	all := feed.Subscribe(ctx, entity.LeadQuery{})
	ann := feed.Subscribe(ctx, entity.LeadQuery{AssignedAgentID: "agent-ann"})
	bob := feed.Subscribe(ctx, entity.LeadQuery{AssignedAgentID: "agent-bob"})
	go feed.Run(ctx)

	// Reassignment from bob to ann.
	src.ch <- &pq.Notification{Channel: ChangeChannel, Extra: `{"op":"UPDATE","id":"lead-1","oldAgentId":"agent-bob","newAgentId":"agent-ann"}`}

	c := receive(t, all)
	assert.Equal(t, entity.ChangeModified, c.Type)
	assert.Equal(t, "lead-1", c.Lead.ID)

	c = receive(t, ann)
	assert.Equal(t, entity.ChangeAdded, c.Type)

	c = receive(t, bob)
	assert.Equal(t, entity.ChangeRemoved, c.Type)
	assert.Nil(t, c.Lead)

	src.ch <- &pq.Notification{Extra: `{"op":"DELETE","id":"lead-1","oldAgentId":"agent-ann"}`}
	assert.Equal(t, entity.ChangeRemoved, receive(t, all).Type)
	assert.Equal(t, entity.ChangeRemoved, receive(t, ann).Type)

	select {
	case c := <-bob:
		t.Fatalf("unexpected change for bob: %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestChangeFeedIgnoresMalformedAndReconnectNotices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{ch: make(chan *pq.Notification, 4)}
	feed := newChangeFeed(src, func(context.Context, string) (*entity.Lead, error) {
		return &entity.Lead{ID: "lead-2"}, nil
	}, logging.NewWithWriter(io.Discard, "error"))
	sub := feed.Subscribe(ctx, entity.LeadQuery{})
	go feed.Run(ctx)

	src.ch <- nil
	src.ch <- &pq.Notification{Extra: `not json`}
	src.ch <- &pq.Notification{Extra: `{"op":"INSERT","id":"lead-2"}`}

	c := receive(t, sub)
	require.Equal(t, entity.ChangeAdded, c.Type)
	assert.Equal(t, "lead-2", c.LeadID)
}

func TestChangeFeedClosesSubscriberOnCancel(t *testing.T) {
	src := &fakeSource{ch: make(chan *pq.Notification)}
	feed := newChangeFeed(src, nil, logging.NewWithWriter(io.Discard, "error"))

	ctx, cancel := context.WithCancel(context.Background())
	sub := feed.Subscribe(ctx, entity.LeadQuery{})
	cancel()

	select {
	case _, ok := <-sub:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed")
	}
}
