package usecase

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kdacanay/wrc-leads/pkg/logging"
)

const DefaultStoreTimeout = 15 * time.Second

// StoreGuard bounds each store call with a timeout and retries it once when
// the failure looks transient.
type StoreGuard struct {
	Timeout time.Duration
	Logger  *logging.Logger
}

func NewStoreGuard(timeout time.Duration, logger *logging.Logger) StoreGuard {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return StoreGuard{Timeout: timeout, Logger: logger}
}

func (g StoreGuard) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := g.attempt(ctx, fn)
	if err == nil || !isTransient(err) || ctx.Err() != nil {
		return err
	}
	g.logger().Warn("store call failed, retrying once", "op", op, "error", err)
	return g.attempt(ctx, fn)
}

func (g StoreGuard) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(attemptCtx)
}

func (g StoreGuard) logger() *logging.Logger {
	if g.Logger == nil {
		return logging.Default()
	}
	return g.Logger
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return pgconn.SafeToRetry(err)
}
