package deliveryman

import (
	"context"

	"fastfeet/internal/domain"
)

type deliverymanRepository interface {
	Get(ctx context.Context, id int64) (*domain.Deliveryman, error)
	List(ctx context.Context, name string, page domain.Page) ([]domain.Deliveryman, error)
	Create(ctx context.Context, dm *domain.Deliveryman) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialDeliverymanUpdate) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

type fileReader interface {
	Get(ctx context.Context, id int64) (*domain.File, error)
}
