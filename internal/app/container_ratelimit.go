package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"fastfeet/internal/config"
	"fastfeet/internal/http/middleware/ratelimit"
	"fastfeet/internal/logx"
)

const (
	sessionWindow     = time.Minute
	sessionMaxClients = 10000
)

// newRateLimiter limits POST /sessions per client IP. A non-positive limit disables it.
func newRateLimiter(cfg *config.Config) ratelimit.Limiter {
	limit := cfg.RateLimit.SessionsPerMinute
	if limit <= 0 {
		return ratelimit.Unlimited{}
	}
	return ratelimit.NewSessionLimiter(limit, sessionWindow, sessionMaxClients)
}

type rateLimitIn struct {
	dig.In
	Logger  logx.Logger
	Counter prometheus.Counter `name:"rate_limit_exceeded_total"`
	Limiter ratelimit.Limiter
}

func newRateLimitMiddleware(in rateLimitIn) *ratelimit.Middleware {
	return ratelimit.New(in.Logger, in.Counter, in.Limiter)
}
