// Package access decides whether an authenticated user may run management
// operations. The administrator flag is cached per user for a short TTL.
package access

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"

	"fastfeet/internal/apperr"
	"fastfeet/internal/auth"
	"fastfeet/internal/logx"
)

// AdminLookup reads the administrator flag of a user. A missing user is not an administrator.
type AdminLookup interface {
	IsAdministrator(ctx context.Context, userID int64) (bool, error)
}

// Policy answers administrator checks.
type Policy struct {
	lookup  AdminLookup
	cache   *expirable.LRU[int64, bool]
	lookups *prometheus.CounterVec
	logger  logx.Logger
}

// NewPolicy creates a Policy. A non-positive size disables caching.
func NewPolicy(lookup AdminLookup, size int, ttl time.Duration, lookups *prometheus.CounterVec, logger logx.Logger) *Policy {
	p := &Policy{lookup: lookup, lookups: lookups, logger: logger}
	if size > 0 {
		p.cache = expirable.NewLRU[int64, bool](size, nil, ttl)
	}
	return p
}

// IsAdministrator reports whether userID holds the administrator flag.
func (p *Policy) IsAdministrator(ctx context.Context, userID int64) (bool, error) {
	if p.cache != nil {
		if admin, ok := p.cache.Get(userID); ok {
			p.count("hit")
			return admin, nil
		}
		p.count("miss")
	}
	admin, err := p.lookup.IsAdministrator(ctx, userID)
	if err != nil {
		return false, err
	}
	if p.cache != nil {
		p.cache.Add(userID, admin)
	}
	return admin, nil
}

// RequireAdministrator rejects with ErrUnauthorized unless the principal in
// ctx is an administrator.
func (p *Policy) RequireAdministrator(ctx context.Context) error {
	pr, ok := auth.PrincipalFrom(ctx)
	if !ok {
		return apperr.Unauthorizedf("Token not provided.")
	}
	admin, err := p.IsAdministrator(ctx, pr.UserID)
	if err != nil {
		return err
	}
	if !admin {
		return apperr.Unauthorizedf("User is not an administrator.")
	}
	return nil
}

// Middleware returns chi-style middleware guarding administrator routes.
func (p *Policy) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := p.RequireAdministrator(r.Context())
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, apperr.ErrUnauthorized):
				writeError(w, http.StatusUnauthorized, apperr.Reason(err, "Unauthorized."))
			default:
				p.logger.Error("administrator check failed", logx.Err(err))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		})
	}
}

func (p *Policy) count(result string) {
	if p.lookups != nil {
		p.lookups.WithLabelValues(result).Inc()
	}
}
