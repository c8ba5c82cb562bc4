package deliverytx

import (
	"context"
	"time"

	"fastfeet/internal/domain"
	"fastfeet/internal/lifecycle"
)

// Repository is the set of delivery operations available inside one transaction.
type Repository interface {
	lifecycle.Resolver
	lifecycle.WithdrawalCounter

	LockDeliveryman(ctx context.Context, id int64) (*domain.Deliveryman, error)
	GetDeliveryForUpdate(ctx context.Context, id int64) (*domain.Delivery, error)
	InsertDelivery(ctx context.Context, d *domain.Delivery) error
	SaveDelivery(ctx context.Context, d *domain.Delivery) error
	GetProblemForUpdate(ctx context.Context, id int64) (*domain.DeliveryProblem, error)
	SoftDeleteProblem(ctx context.Context, id int64, at time.Time) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
