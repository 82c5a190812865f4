package usecase

import (
	"context"
	"time"

	"github.com/kdacanay/wrc-leads/internal/csvimport"
	"github.com/kdacanay/wrc-leads/internal/infra/queue"
)

// SessionStore keeps import wizard state between preview and confirm.
type SessionStore interface {
	Save(ctx context.Context, s *csvimport.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*csvimport.Session, error)
	Delete(ctx context.Context, id string) error
}

type QueueProducerInterface interface {
	PublishAssignment(ctx context.Context, payload queue.AssignmentPayload) error
}

// Clock lets tests pin journal timestamps.
type Clock func() time.Time
