package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/internal/infra/memory"
	"github.com/kdacanay/wrc-leads/internal/usecase"
	"github.com/kdacanay/wrc-leads/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLead(t *testing.T, store *memory.LeadStore, latest string, texts ...string) string {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lead := &entity.Lead{FirstName: "Lee", LatestActivity: latest, JournalLastEntry: latest}
	for i, text := range texts {
		lead.Journal = append(lead.Journal, entity.JournalEntry{
			ID:        text,
			Text:      text,
			Type:      entity.JournalTypeNote,
			CreatedAt: entity.NewTimestamp(base.Add(time.Duration(i) * time.Minute)),
		})
	}
	id, err := store.Create(context.Background(), lead)
	require.NoError(t, err)
	return id
}

func TestProjectionWorkerRepairsStaleLeads(t *testing.T) {
	logger := logging.NewWithWriter(io.Discard, "error")
	store := memory.NewLeadStore()
	journal := usecase.NewJournalService(store, usecase.NewStoreGuard(time.Second, logger), nil, logger)

	stale := seedLead(t, store, "Imported", "Imported", "Called twice")
	fresh := seedLead(t, store, "Emailed", "Emailed")
	seedLead(t, store, "Legacy text")

	w := NewProjectionWorker(store, journal, time.Minute, logger)
	assert.Equal(t, 1, w.RepairOnce(context.Background()))

	lead, err := store.Get(context.Background(), stale)
	require.NoError(t, err)
	assert.Equal(t, "Called twice", lead.LatestActivity)
	assert.Equal(t, "Called twice", lead.JournalLastEntry)

	lead, err = store.Get(context.Background(), fresh)
	require.NoError(t, err)
	assert.Equal(t, "Emailed", lead.LatestActivity)

	assert.Zero(t, w.RepairOnce(context.Background()), "second pass finds nothing")
}

type failingLister struct{}

func (failingLister) List(context.Context, entity.LeadQuery) ([]*entity.Lead, error) {
	return nil, errors.New("store down")
}

type countingRecomputer struct{ calls int }

func (c *countingRecomputer) Recompute(context.Context, string) (bool, error) {
	c.calls++
	return true, nil
}

func TestProjectionWorkerSurvivesScanFailure(t *testing.T) {
	rec := &countingRecomputer{}
	w := NewProjectionWorker(failingLister{}, rec, 0, logging.NewWithWriter(io.Discard, "error"))
	assert.Zero(t, w.RepairOnce(context.Background()))
	assert.Zero(t, rec.calls)
	assert.Equal(t, 10*time.Minute, w.tickInterval)
}

func TestProjectionWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewProjectionWorker(memory.NewLeadStore(), &countingRecomputer{}, time.Hour, logging.NewWithWriter(io.Discard, "error"))

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
