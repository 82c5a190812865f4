package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(id, text string, ms int64) *entity.JournalEntry {
	return &entity.JournalEntry{ID: id, Text: text, CreatedAt: entity.TimestampFromMillis(ms)}
}

func TestLeadStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	s := NewLeadStore()

	in := &entity.Lead{FirstName: "Ann"}
	id, err := s.Create(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Empty(t, in.ID, "caller's lead is not mutated")

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)

	got.FirstName = "changed"
	again, _ := s.Get(ctx, id)
	assert.Equal(t, "Ann", again.FirstName, "Get returns copies")

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}

func TestLeadStoreCreateSameIDTwice(t *testing.T) {
	ctx := context.Background()
	s := NewLeadStore()

	id, err := s.Create(ctx, &entity.Lead{ID: "lead-1", FirstName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "lead-1", id)

	id, err = s.Create(ctx, &entity.Lead{ID: "lead-1", FirstName: "Other"})
	require.NoError(t, err)
	assert.Equal(t, "lead-1", id)

	all, err := s.List(ctx, entity.LeadQuery{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ann", all[0].FirstName)
}

func TestLeadStoreConcurrentAppendsAreAllKept(t *testing.T) {
	ctx := context.Background()
	s := NewLeadStore()
	id, _ := s.Create(ctx, &entity.Lead{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := entity.LeadMutation{Append: newEntry(fmt.Sprintf("e%d", i), fmt.Sprintf("entry %d", i), int64(1000+i))}
			assert.NoError(t, s.Update(ctx, id, m))
		}(i)
	}
	wg.Wait()

	lead, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Len(t, lead.Journal, 50)
}

func TestLeadStoreUpdateIsIdempotentPerEntry(t *testing.T) {
	ctx := context.Background()
	s := NewLeadStore()
	id, _ := s.Create(ctx, &entity.Lead{})

	m := entity.LeadMutation{Append: newEntry("same", "once", 1000)}
	require.NoError(t, s.Update(ctx, id, m))
	require.NoError(t, s.Update(ctx, id, m))

	lead, _ := s.Get(ctx, id)
	assert.Len(t, lead.Journal, 1)
	assert.Equal(t, "once", lead.LatestActivity)
}

func TestLeadStoreCommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewLeadStore()
	a, _ := s.Create(ctx, &entity.Lead{FirstName: "A"})
	b, _ := s.Create(ctx, &entity.Lead{FirstName: "B"})

	batch := entity.NewWriteBatch()
	batch.Delete(a)
	batch.Update("missing", entity.LeadMutation{})
	assert.ErrorIs(t, s.Commit(ctx, batch), entity.ErrLeadNotFound)

	_, err := s.Get(ctx, a)
	assert.NoError(t, err, "nothing applied from a failed batch")

	batch = entity.NewWriteBatch()
	batch.Delete(a)
	batch.Delete("already-gone")
	batch.Update(b, entity.LeadMutation{Patch: entity.LeadPatch{FirstName: entity.StringPtr("Bee")}})
	require.NoError(t, s.Commit(ctx, batch))

	_, err = s.Get(ctx, a)
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	got, _ := s.Get(ctx, b)
	assert.Equal(t, "Bee", got.FirstName)
}

func TestLeadStoreUpdateJournalRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewLeadStore()
	id, _ := s.Create(ctx, &entity.Lead{Journal: []entity.JournalEntry{*newEntry("a", "A", 1)}})

	err := s.UpdateJournal(ctx, id, func(l *entity.Lead) error {
		l.Journal[0].IsDeleted = true
		return entity.ErrEntryNotFound
	})
	assert.ErrorIs(t, err, entity.ErrEntryNotFound)

	lead, _ := s.Get(ctx, id)
	assert.False(t, lead.Journal[0].IsDeleted)
}

func TestLeadStoreListScopesByAgent(t *testing.T) {
	ctx := context.Background()
	s := NewLeadStore()
	s.Create(ctx, &entity.Lead{FirstName: "mine", AssignedAgentID: "agent-1", CreatedAt: entity.TimestampFromMillis(2)})
	s.Create(ctx, &entity.Lead{FirstName: "theirs", AssignedAgentID: "agent-2", CreatedAt: entity.TimestampFromMillis(1)})
	s.Create(ctx, &entity.Lead{FirstName: "newest", CreatedAt: entity.TimestampFromMillis(3)})

	all, err := s.List(ctx, entity.LeadQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "newest", all[0].FirstName)

	mine, err := s.List(ctx, entity.LeadQuery{AssignedAgentID: "agent-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0].FirstName)

	limited, _ := s.List(ctx, entity.LeadQuery{Limit: 2})
	assert.Len(t, limited, 2)
}

func TestLeadStoreSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewLeadStore()

	ch, err := s.Subscribe(ctx, entity.LeadQuery{AssignedAgentID: "agent-1"})
	require.NoError(t, err)

	id, _ := s.Create(context.Background(), &entity.Lead{})
	require.NoError(t, s.Update(context.Background(), id, entity.LeadMutation{
		Patch: entity.LeadPatch{AssignedAgentID: entity.StringPtr("agent-1")},
	}))
	require.NoError(t, s.Update(context.Background(), id, entity.LeadMutation{
		Patch: entity.LeadPatch{AssignedAgentID: entity.StringPtr("agent-2")},
	}))

	expect := []entity.ChangeType{entity.ChangeAdded, entity.ChangeRemoved}
	for _, want := range expect {
		select {
		case change := <-ch:
			assert.Equal(t, want, change.Type)
			assert.Equal(t, id, change.LeadID)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel closes when the context ends")
	case <-time.After(time.Second):
		t.Fatal("subscription channel not closed")
	}
}
