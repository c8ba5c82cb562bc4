package recipient

import (
	"context"
	"time"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
	"fastfeet/internal/validation"
)

// PageSize is the number of recipients per listing page.
const PageSize = 10

// Service coordinates recipient business logic and orchestrates repository calls.
type Service struct {
	repo             recipientRepository
	operationTimeout time.Duration
}

// NewService creates and configures a recipient Service.
func NewService(r recipientRepository, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func notFound(id int64) error {
	return apperr.NotFoundf("Recipient of id %d not found.", id)
}

// Get retrieves an active recipient by its ID.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Recipient, error) {
	if err := validation.ID(id); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound(id)
	}
	return r, nil
}

// List returns one page of active recipients whose name contains q.
func (s *Service) List(ctx context.Context, q string, page int) ([]domain.Recipient, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, q, domain.NewPage(page, PageSize))
}

// Create persists a new recipient and returns it with its generated ID.
func (s *Service) Create(ctx context.Context, r domain.Recipient) (*domain.Recipient, error) {
	if err := validation.Recipient(r); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	id, err := s.repo.Create(ctx, &r)
	if err != nil {
		return nil, err
	}
	r.ID = id
	return &r, nil
}

// Update applies a partial update and returns the stored recipient.
func (s *Service) Update(ctx context.Context, u domain.PartialRecipientUpdate) (*domain.Recipient, error) {
	if err := validation.RecipientUpdate(u); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(u.ID)
	}
	r, err := s.repo.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound(u.ID)
	}
	return r, nil
}

// Delete soft-deletes a recipient. Deleting twice is NotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := validation.ID(id); err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(id)
	}
	return nil
}
