package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	obs "fastfeet/internal/http/middleware"
	"fastfeet/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter     `name:"rate_limit_exceeded_total"`
	MailRetriesTotal       prometheus.Counter     `name:"mail_retries_total"`
	TransitionsTotal       *prometheus.CounterVec `name:"delivery_transitions_total"`
	NotificationsTotal     *prometheus.CounterVec `name:"notifications_total"`
	AdminLookupsTotal      *prometheus.CounterVec `name:"access_admin_cache_lookups_total"`
	HTTP                   obs.HTTPMetrics
}

// provideMetrics registers the application collectors with the default
// registerer. Collectors registered earlier (a second container in the same
// process) are reused.
func provideMetrics() (metricsOut, error) {
	reg := prometheus.DefaultRegisterer
	var (
		out metricsOut
		err error
	)
	if out.RateLimitExceededTotal, err = register(reg, "rate_limit_exceeded_total", metrics.NewRateLimitExceededTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.MailRetriesTotal, err = register(reg, "mail_retries_total", metrics.NewMailRetriesTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.TransitionsTotal, err = register(reg, "delivery_transitions_total", metrics.NewTransitionsTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.NotificationsTotal, err = register(reg, "notifications_total", metrics.NewNotificationsTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.AdminLookupsTotal, err = register(reg, "access_admin_cache_lookups_total", metrics.NewAdminCacheLookupsTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.HTTP.Requests, err = register(reg, "http_requests_total", metrics.NewHTTPRequestsTotal()); err != nil {
		return metricsOut{}, err
	}
	if out.HTTP.Duration, err = register(reg, "http_request_duration_seconds", metrics.NewHTTPRequestDuration()); err != nil {
		return metricsOut{}, err
	}
	return out, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, name string, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}

func registerMetrics(container *dig.Container) error {
	return provideAll(container, provideMetrics)
}
