package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SessionLimiter allows at most limit sign-in attempts per client in a fixed window
// that opens with the client's first attempt.
type SessionLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	// idle clients age out after one window; the oldest are dropped past maxClients
	clients *expirable.LRU[string, *attempts]
}

type attempts struct {
	opened time.Time
	count  int
}

// NewSessionLimiter builds a limiter. limit and window fall back to 1 and one minute.
func NewSessionLimiter(limit int, window time.Duration, maxClients int) *SessionLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &SessionLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: expirable.NewLRU[string, *attempts](maxClients, nil, window),
	}
}

// WithClock replaces the time source.
func (l *SessionLimiter) WithClock(now func() time.Time) *SessionLimiter {
	l.now = now
	return l
}

// Allow records an attempt by client.
func (l *SessionLimiter) Allow(client string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.clients.Get(client)
	if !ok || now.Sub(a.opened) >= l.window {
		l.clients.Add(client, &attempts{opened: now, count: 1})
		return true, 0
	}
	if a.count >= l.limit {
		return false, a.opened.Add(l.window).Sub(now)
	}
	a.count++
	return true, 0
}

// Unlimited never refuses.
type Unlimited struct{}

// Allow always reports ok.
func (Unlimited) Allow(string) (bool, time.Duration) { return true, 0 }
