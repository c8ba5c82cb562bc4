package problem

import (
	"context"

	"fastfeet/internal/domain"
)

type problemRepository interface {
	Create(ctx context.Context, p *domain.DeliveryProblem) error
	ListByDelivery(ctx context.Context, deliveryID int64, page domain.Page) ([]domain.DeliveryProblem, error)
	ListOpen(ctx context.Context, page domain.Page) ([]domain.ProblemDetails, error)
}

type deliveryReader interface {
	Details(ctx context.Context, id int64) (*domain.DeliveryDetails, error)
}
