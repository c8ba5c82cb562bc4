package deliveryman

import (
	"context"
	"time"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
	"fastfeet/internal/validation"
)

// PageSize is the number of deliverymen per listing page.
const PageSize = 20

// Service manages deliverymen.
type Service struct {
	repo             deliverymanRepository
	files            fileReader
	operationTimeout time.Duration
}

// NewService creates and configures a deliveryman Service.
func NewService(r deliverymanRepository, files fileReader, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, files: files, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func notFound(id int64) error {
	return apperr.NotFoundf("Deliveryman of id %d not found.", id)
}

// Get retrieves an active deliveryman with avatar.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Deliveryman, error) {
	if err := validation.ID(id); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.get(ctx, id)
}

func (s *Service) get(ctx context.Context, id int64) (*domain.Deliveryman, error) {
	dm, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, notFound(id)
	}
	return dm, nil
}

// List returns one page of active deliverymen whose name contains q.
func (s *Service) List(ctx context.Context, q string, page int) ([]domain.Deliveryman, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, q, domain.NewPage(page, PageSize))
}

// Create registers a deliveryman. The email must be unused.
func (s *Service) Create(ctx context.Context, dm domain.Deliveryman) (*domain.Deliveryman, error) {
	if err := validation.Deliveryman(dm); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.checkAvatar(ctx, dm.AvatarID); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, &dm)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

// Update applies a partial update. A new email must be unused.
func (s *Service) Update(ctx context.Context, u domain.PartialDeliverymanUpdate) (*domain.Deliveryman, error) {
	if err := validation.DeliverymanUpdate(u); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.checkAvatar(ctx, u.AvatarID); err != nil {
		return nil, err
	}
	ok, err := s.repo.UpdatePartial(ctx, u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(u.ID)
	}
	return s.get(ctx, u.ID)
}

// Delete soft-deletes a deliveryman. Deleting twice is NotFound.
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

func (s *Service) checkAvatar(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	f, err := s.files.Get(ctx, *id)
	if err != nil {
		return err
	}
	if f == nil {
		return apperr.NotFoundf("Avatar of id %d not found.", *id)
	}
	return nil
}
