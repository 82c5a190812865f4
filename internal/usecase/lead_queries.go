package usecase

import (
	"context"
	"errors"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

// LeadQueries serves reads, live subscriptions and single deletes.
type LeadQueries struct {
	Store  entity.LeadStore
	Guard  StoreGuard
	Logger *logging.Logger
}

func NewLeadQueries(store entity.LeadStore, guard StoreGuard, logger *logging.Logger) *LeadQueries {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadQueries{Store: store, Guard: guard, Logger: logger}
}

// scopeFor limits agents to the leads assigned to them.
func scopeFor(actor entity.Actor) (entity.LeadQuery, error) {
	switch {
	case actor.IsAdmin():
		return entity.LeadQuery{}, nil
	case actor.IsAgent():
		return entity.LeadQuery{AssignedAgentID: actor.ID}, nil
	}
	return entity.LeadQuery{}, NewDomainError(CodePermissionDenied, "Unknown role.")
}

func (q *LeadQueries) List(ctx context.Context, actor entity.Actor) ([]*entity.Lead, error) {
	query, err := scopeFor(actor)
	if err != nil {
		return nil, err
	}
	var leads []*entity.Lead
	err = q.Guard.Do(ctx, "lead.list", func(ctx context.Context) error {
		var err error
		leads, err = q.Store.List(ctx, query)
		return err
	})
	if err != nil {
		q.Logger.Error("lead list failed", "error", err)
		return nil, storeError(err, "Failed to load leads.")
	}
	return leads, nil
}

func (q *LeadQueries) Get(ctx context.Context, actor entity.Actor, leadID string) (*entity.Lead, error) {
	var lead *entity.Lead
	err := q.Guard.Do(ctx, "lead.get", func(ctx context.Context) error {
		var err error
		lead, err = q.Store.Get(ctx, leadID)
		return err
	})
	if err != nil {
		return nil, storeError(err, "Failed to load lead.")
	}
	if err := canAccess(actor, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// Watch subscribes to live changes within the actor's scope. The channel
// closes when ctx ends.
func (q *LeadQueries) Watch(ctx context.Context, actor entity.Actor) (<-chan entity.LeadChange, error) {
	query, err := scopeFor(actor)
	if err != nil {
		return nil, err
	}
	ch, err := q.Store.Subscribe(ctx, query)
	if err != nil {
		return nil, storeError(err, "Failed to subscribe to leads.")
	}
	return ch, nil
}

func (q *LeadQueries) Delete(ctx context.Context, actor entity.Actor, leadID string) error {
	if !actor.IsAdmin() {
		return NewDomainError(CodePermissionDenied, "Only admins can delete leads.")
	}
	attempts := 0
	err := q.Guard.Do(ctx, "lead.delete", func(ctx context.Context) error {
		attempts++
		err := q.Store.Delete(ctx, leadID)
		// The first attempt may have committed before timing out.
		if attempts > 1 && errors.Is(err, entity.ErrLeadNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return storeError(err, "Failed to delete lead.")
	}
	q.Logger.Info("lead deleted", "lead_id", leadID, "deleted_by", actor.ID)
	return nil
}
