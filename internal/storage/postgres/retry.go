package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const maxRetryDelay = 5 * time.Second

// retryPolicy retries a database operation with doubling, capped delays.
type retryPolicy struct {
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func newRetryPolicy(maxRetries int, backoff time.Duration, logger *zap.Logger) retryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return retryPolicy{maxRetries: maxRetries, backoff: backoff, logger: logger}
}

// do runs fn until it succeeds, the attempts are used up or ctx ends.
// The last error from fn is returned.
func (p retryPolicy) do(ctx context.Context, op string, fn func(context.Context) error) error {
	delay := p.backoff
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				p.logger.Info("postgres operation recovered", zap.String("op", op), zap.Int("attempt", attempt))
			}
			return nil
		}
		if attempt > p.maxRetries {
			p.logger.Error("postgres operation failed", zap.String("op", op), zap.Int("attempts", attempt), zap.Error(err))
			return err
		}
		p.logger.Warn("postgres operation failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}
