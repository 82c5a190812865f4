package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kdacanay/wrc-leads/internal/entity"
)

const subscriberBuffer = 64

type subscriber struct {
	query entity.LeadQuery
	ch    chan entity.LeadChange
}

// LeadStore is an in-process entity.LeadStore for development and tests.
// Subscribers that fall more than subscriberBuffer changes behind miss
// notifications.
type LeadStore struct {
	mu      sync.RWMutex
	leads   map[string]*entity.Lead
	subs    map[int]*subscriber
	nextSub int
}

func NewLeadStore() *LeadStore {
	return &LeadStore{
		leads: make(map[string]*entity.Lead),
		subs:  make(map[int]*subscriber),
	}
}

func (s *LeadStore) Create(ctx context.Context, lead *entity.Lead) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := lead.Clone()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	// Creating an existing id again is a no-op.
	if _, ok := s.leads[stored.ID]; ok {
		return stored.ID, nil
	}
	s.leads[stored.ID] = stored
	s.publish(nil, stored)
	return stored.ID, nil
}

func (s *LeadStore) Get(ctx context.Context, id string) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return lead.Clone(), nil
}

// List returns matching leads, newest first.
func (s *LeadStore) List(ctx context.Context, q entity.LeadQuery) ([]*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if q.Matches(l) {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Millis() != out[j].CreatedAt.Millis() {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *LeadStore) Update(ctx context.Context, id string, m entity.LeadMutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	s.apply(lead, m)
	return nil
}

func (s *LeadStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	delete(s.leads, id)
	s.publish(lead, nil)
	return nil
}

// Commit applies every op or none. Updates need an existing lead; deletes of
// missing leads are no-ops.
func (s *LeadStore) Commit(ctx context.Context, batch *entity.WriteBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := batch.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range batch.Ops() {
		if op.Kind == entity.BatchUpdate {
			if _, ok := s.leads[op.LeadID]; !ok {
				return entity.ErrLeadNotFound
			}
		}
	}
	for _, op := range batch.Ops() {
		lead, ok := s.leads[op.LeadID]
		switch op.Kind {
		case entity.BatchUpdate:
			s.apply(lead, op.Mutation)
		case entity.BatchDelete:
			if ok {
				delete(s.leads, op.LeadID)
				s.publish(lead, nil)
			}
		}
	}
	return nil
}

func (s *LeadStore) UpdateJournal(ctx context.Context, id string, fn func(*entity.Lead) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	draft := lead.Clone()
	if err := fn(draft); err != nil {
		return err
	}
	draft.ID = id
	s.leads[id] = draft
	s.publish(lead, draft)
	return nil
}

// Subscribe streams changes matching q until ctx is done.
func (s *LeadStore) Subscribe(ctx context.Context, q entity.LeadQuery) (<-chan entity.LeadChange, error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	sub := &subscriber{query: q, ch: make(chan entity.LeadChange, subscriberBuffer)}
	s.subs[id] = sub
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(sub.ch)
		s.mu.Unlock()
	}()
	return sub.ch, nil
}

func (s *LeadStore) apply(lead *entity.Lead, m entity.LeadMutation) {
	before := lead.Clone()
	m.ApplyOnce(lead)
	s.publish(before, lead)
}

// publish fans a change out to subscribers. Caller holds s.mu.
func (s *LeadStore) publish(before, after *entity.Lead) {
	for _, sub := range s.subs {
		var change entity.LeadChange
		inBefore := before != nil && sub.query.Matches(before)
		inAfter := after != nil && sub.query.Matches(after)
		switch {
		case !inBefore && inAfter:
			change = entity.LeadChange{Type: entity.ChangeAdded, LeadID: after.ID, Lead: after.Clone()}
		case inBefore && inAfter:
			change = entity.LeadChange{Type: entity.ChangeModified, LeadID: after.ID, Lead: after.Clone()}
		case inBefore && !inAfter:
			change = entity.LeadChange{Type: entity.ChangeRemoved, LeadID: before.ID}
		default:
			continue
		}
		select {
		case sub.ch <- change:
		default:
		}
	}
}
