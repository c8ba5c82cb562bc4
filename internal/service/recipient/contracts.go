package recipient

import (
	"context"

	"fastfeet/internal/domain"
)

// recipientRepository defines storage operations required by the business layer.
type recipientRepository interface {
	Get(ctx context.Context, id int64) (*domain.Recipient, error)
	List(ctx context.Context, name string, page domain.Page) ([]domain.Recipient, error)
	Create(ctx context.Context, r *domain.Recipient) (int64, error)
	UpdatePartial(ctx context.Context, u domain.PartialRecipientUpdate) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
}
