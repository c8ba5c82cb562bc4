package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fastfeet/internal/logx"
	"fastfeet/internal/repository"
)

var newPool = repository.NewPool

const (
	connectAttemptTimeout = 3 * time.Second
	maxConnectDelay       = 8 * time.Second
)

// connectDbWithRetry waits for postgres to come up. The pause between attempts
// starts at delay and doubles up to maxConnectDelay.
func connectDbWithRetry(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, connectAttemptTimeout)
		pool, err := newPool(attemptCtx, dsn)
		cancel()
		if err == nil {
			logger.Info("db connected", logx.Int("attempt", attempt))
			return pool, nil
		}
		lastErr = err
		if attempt == retries {
			break
		}

		logger.Warn("db connect failed",
			logx.Int("attempt", attempt),
			logx.Int("retries", retries),
			logx.Duration("next_in", delay),
			logx.Err(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, maxConnectDelay)
	}
	return nil, fmt.Errorf("db connect failed after %d attempts: %w", retries, lastErr)
}
