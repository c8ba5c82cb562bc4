package user

import (
	"context"

	"fastfeet/internal/domain"
)

type userRepository interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (int64, error)
	Update(ctx context.Context, u domain.User) error
	EnsureAdministrator(ctx context.Context, u domain.User) (bool, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}
