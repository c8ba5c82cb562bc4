package ratelimit

import "time"

// Limiter decides whether a client may attempt another sign-in.
// When it refuses, wait is how long until the client's window reopens.
type Limiter interface {
	Allow(client string) (ok bool, wait time.Duration)
}
