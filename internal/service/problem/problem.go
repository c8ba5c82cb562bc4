// Package problem records issues reported against deliveries. Resolving a
// problem by canceling its delivery lives in the delivery service.
package problem

import (
	"context"
	"time"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
	"fastfeet/internal/logx"
	"fastfeet/internal/validation"
)

// PageSize is the number of problems per listing page.
const PageSize = 10

// Service manages delivery problems.
type Service struct {
	repo             problemRepository
	deliveries       deliveryReader
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a problem Service.
func NewService(r problemRepository, deliveries deliveryReader, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, deliveries: deliveries, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func (s *Service) delivery(ctx context.Context, id int64) (*domain.DeliveryDetails, error) {
	d, err := s.deliveries.Details(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFoundf("Delivery of id %d not found.", id)
	}
	return d, nil
}

// Create reports a problem on a delivery that exists and is not canceled.
func (s *Service) Create(ctx context.Context, deliveryID int64, description string) (*domain.DeliveryProblem, error) {
	if err := validation.Problem(deliveryID, description); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.delivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if d.CanceledAt != nil {
		return nil, apperr.Illegalf("Delivery of id %d canceled.", deliveryID)
	}

	p := &domain.DeliveryProblem{DeliveryID: deliveryID, Description: description}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("delivery problem reported",
		logx.Int64("problem_id", p.ID),
		logx.Int64("delivery_id", deliveryID),
	)
	return p, nil
}

// ListByDelivery returns one page of the open problems of a delivery.
func (s *Service) ListByDelivery(ctx context.Context, deliveryID int64, page int) ([]domain.DeliveryProblem, error) {
	if err := validation.ID(deliveryID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.delivery(ctx, deliveryID); err != nil {
		return nil, err
	}
	return s.repo.ListByDelivery(ctx, deliveryID, domain.NewPage(page, PageSize))
}

// ListOpen returns one page of open problems across all deliveries.
func (s *Service) ListOpen(ctx context.Context, page int) ([]domain.ProblemDetails, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListOpen(ctx, domain.NewPage(page, PageSize))
}
