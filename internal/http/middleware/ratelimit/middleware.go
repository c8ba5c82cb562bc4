package ratelimit

import (
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fastfeet/internal/logx"
)

const tooManyAttempts = `{"error":"Too many sign-in attempts."}`

// Middleware throttles sign-in attempts by client IP.
type Middleware struct {
	logger  logx.Logger
	counter prometheus.Counter
	limiter Limiter
}

// New creates a Middleware. A nil limiter lets everything through.
func New(logger logx.Logger, counter prometheus.Counter, limiter Limiter) *Middleware {
	if limiter == nil {
		limiter = Unlimited{}
	}
	return &Middleware{logger: logger, counter: counter, limiter: limiter}
}

// Handler returns chi-style middleware answering 429 with Retry-After once a client is throttled.
func (m *Middleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ok, wait := m.limiter.Allow(ip)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			if m.counter != nil {
				m.counter.Inc()
			}
			m.logger.Warn("sign-in attempts throttled",
				logx.String("ip", ip),
				logx.Duration("retry_after", wait),
			)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(wait)))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := io.WriteString(w, tooManyAttempts); err != nil {
				m.logger.Debug("throttle response write failed", logx.String("ip", ip), logx.Err(err))
			}
		})
	}
}

// retrySeconds rounds up so clients never retry before the window reopens.
func retrySeconds(wait time.Duration) int {
	if wait <= 0 {
		return 1
	}
	return int(math.Ceil(wait.Seconds()))
}

// clientIP expects chi's RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
