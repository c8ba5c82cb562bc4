package app

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"fastfeet/internal/notify"
	"fastfeet/internal/service/notification"
	"fastfeet/internal/transport/kafka"
)

type taskHandler interface {
	Handle(ctx context.Context, t notify.Task) error
}

// makeNotificationHandler adapts the processor to the consumer. Undeliverable
// tasks become permanent so the consumer commits past them.
func makeNotificationHandler(p taskHandler, results *prometheus.CounterVec) kafka.HandleFunc {
	count := func(t notify.Task, result string) {
		if results != nil {
			results.WithLabelValues(string(t.Name), result).Inc()
		}
	}
	return func(ctx context.Context, t notify.Task) error {
		err := p.Handle(ctx, t)
		switch {
		case err == nil:
			count(t, "sent")
			return nil
		case errors.Is(err, notification.ErrUndeliverable):
			count(t, "skipped")
			return kafka.Permanent(err)
		default:
			count(t, "failed")
			return err
		}
	}
}
