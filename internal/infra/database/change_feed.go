package database

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/kdacanay/wrc-leads/internal/entity"
	"github.com/kdacanay/wrc-leads/pkg/logging"
	"github.com/lib/pq"
)

// ChangeChannel is the NOTIFY channel the leads trigger writes to.
const ChangeChannel = "lead_changes"

const feedSubscriberBuffer = 64

// changeNotice is the payload of the leads trigger.
type changeNotice struct {
	Op         string `json:"op"`
	ID         string `json:"id"`
	OldAgentID string `json:"oldAgentId"`
	NewAgentID string `json:"newAgentId"`
}

type notificationSource interface {
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

type leadLoader func(ctx context.Context, id string) (*entity.Lead, error)

type feedSubscriber struct {
	query entity.LeadQuery
	ch    chan entity.LeadChange
}

// ChangeFeed fans Postgres notifications out to lead subscribers. Slow
// subscribers miss changes rather than block the feed.
type ChangeFeed struct {
	source notificationSource
	load   leadLoader
	logger *logging.Logger

	mu   sync.Mutex
	subs map[int]*feedSubscriber
	next int
}

// NewChangeFeed opens a dedicated LISTEN connection.
func NewChangeFeed(dsn string, logger *logging.Logger) (*ChangeFeed, error) {
	if logger == nil {
		logger = logging.Default()
	}
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("lead change listener event", "event", ev, "error", err)
		}
	})
	if err := listener.Listen(ChangeChannel); err != nil {
		listener.Close()
		return nil, err
	}
	return newChangeFeed(listener, nil, logger), nil
}

func newChangeFeed(source notificationSource, load leadLoader, logger *logging.Logger) *ChangeFeed {
	return &ChangeFeed{source: source, load: load, logger: logger, subs: make(map[int]*feedSubscriber)}
}

// Run dispatches notifications until ctx is done.
func (f *ChangeFeed) Run(ctx context.Context) {
	notifications := f.source.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			// A nil notification means the connection was re-established and
			// notices may have been missed.
			if n == nil {
				f.logger.Warn("lead change listener reconnected")
				continue
			}
			f.dispatch(ctx, n.Extra)
		}
	}
}

func (f *ChangeFeed) Close() error {
	return f.source.Close()
}

func (f *ChangeFeed) Subscribe(ctx context.Context, q entity.LeadQuery) <-chan entity.LeadChange {
	f.mu.Lock()
	id := f.next
	f.next++
	sub := &feedSubscriber{query: q, ch: make(chan entity.LeadChange, feedSubscriberBuffer)}
	f.subs[id] = sub
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(sub.ch)
		f.mu.Unlock()
	}()
	return sub.ch
}

func (f *ChangeFeed) dispatch(ctx context.Context, payload string) {
	var notice changeNotice
	if err := json.Unmarshal([]byte(payload), &notice); err != nil {
		f.logger.Warn("malformed lead change notice", "payload", payload, "error", err)
		return
	}

	var lead *entity.Lead
	if notice.Op != "DELETE" {
		var err error
		lead, err = f.load(ctx, notice.ID)
		if err != nil && !errors.Is(err, entity.ErrLeadNotFound) {
			f.logger.Warn("lead change reload failed", "lead_id", notice.ID, "error", err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		inBefore := notice.Op != "INSERT" && agentMatches(sub.query, notice.OldAgentID)
		inAfter := notice.Op != "DELETE" && agentMatches(sub.query, notice.NewAgentID)

		var change entity.LeadChange
		switch {
		case inAfter:
			if lead == nil {
				continue
			}
			change = entity.LeadChange{Type: entity.ChangeModified, LeadID: notice.ID, Lead: lead.Clone()}
			if !inBefore {
				change.Type = entity.ChangeAdded
			}
		case inBefore:
			change = entity.LeadChange{Type: entity.ChangeRemoved, LeadID: notice.ID}
		default:
			continue
		}

		select {
		case sub.ch <- change:
		default:
		}
	}
}

func agentMatches(q entity.LeadQuery, agentID string) bool {
	return q.AssignedAgentID == "" || q.AssignedAgentID == agentID
}
