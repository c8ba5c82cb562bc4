package mail

import (
	"context"
	"errors"
	"net/textproto"
	"time"

	"fastfeet/internal/logx"
)

type counter interface {
	Inc()
}

// RetryConfig describes the behaviour of RetryingSender.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingSender retries transient delivery failures with exponential backoff.
type RetryingSender struct {
	next    Sender
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetryingSender wraps next; it returns nil when next is nil.
func NewRetryingSender(next Sender, logger logx.Logger, retries counter, cfg RetryConfig) *RetryingSender {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingSender{next: next, logger: logger, retries: retries, cfg: cfg}
}

// Send delivers m, retrying while the failure looks transient.
func (s *RetryingSender) Send(ctx context.Context, m Message) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		err := s.next.Send(ctx, m)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == s.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(s.cfg.BaseDelay, s.cfg.MaxDelay, attempt)
		if s.retries != nil {
			s.retries.Inc()
		}
		s.logger.Warn("mail send retry",
			logx.String("to", m.ToAddr),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

// isRetryable treats permanent SMTP replies (5xx) and cancellation as final.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code < 500
	}
	return true
}

// IsPermanent reports whether err is an SMTP reply that no retry can fix.
func IsPermanent(err error) bool {
	var tpErr *textproto.Error
	return errors.As(err, &tpErr) && tpErr.Code >= 500
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
