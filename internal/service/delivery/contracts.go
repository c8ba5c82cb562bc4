package delivery

import (
	"context"

	"fastfeet/internal/domain"
	"fastfeet/internal/notify"
	"fastfeet/internal/ports/deliverytx"
)

type deliveryRepository interface {
	deliverytx.Runner
	Details(ctx context.Context, id int64) (*domain.DeliveryDetails, error)
	List(ctx context.Context, f domain.DeliveryFilter, page domain.Page) ([]domain.DeliveryDetails, error)
}

type deliverymanReader interface {
	Get(ctx context.Context, id int64) (*domain.Deliveryman, error)
}

// Dispatcher is the notification queue used for side effects of accepted transitions.
type Dispatcher = notify.Dispatcher
