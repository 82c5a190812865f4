package worker

import (
	"context"
	"time"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

type leadLister interface {
	List(ctx context.Context, q entity.LeadQuery) ([]*entity.Lead, error)
}

type projectionRecomputer interface {
	Recompute(ctx context.Context, leadID string) (bool, error)
}

// ProjectionWorker periodically rewrites latestActivity and journalLastEntry
// on leads whose denormalized copies drifted from their journal.
type ProjectionWorker struct {
	leads        leadLister
	journal      projectionRecomputer
	logger       *logging.Logger
	tickInterval time.Duration
}

func NewProjectionWorker(leads leadLister, journal projectionRecomputer, interval time.Duration, logger *logging.Logger) *ProjectionWorker {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ProjectionWorker{
		leads:        leads,
		journal:      journal,
		logger:       logger,
		tickInterval: interval,
	}
}

func (w *ProjectionWorker) Start(ctx context.Context) {
	w.logger.Info("projection worker started", "interval", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.RepairOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("projection worker stopped")
			return
		case <-ticker.C:
			w.RepairOnce(ctx)
		}
	}
}

// RepairOnce scans every lead and returns how many projections it rewrote.
func (w *ProjectionWorker) RepairOnce(ctx context.Context) int {
	leads, err := w.leads.List(ctx, entity.LeadQuery{})
	if err != nil {
		w.logger.Error("projection scan failed", "error", err)
		return 0
	}

	repaired := 0
	for _, lead := range leads {
		if !lead.ProjectionStale() {
			continue
		}
		changed, err := w.journal.Recompute(ctx, lead.ID)
		if err != nil {
			w.logger.Warn("projection repair failed", "lead_id", lead.ID, "error", err)
			continue
		}
		if changed {
			repaired++
		}
	}

	if repaired > 0 {
		w.logger.Info("projections repaired", "count", repaired)
	}
	return repaired
}
