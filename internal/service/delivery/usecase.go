package delivery

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
	"fastfeet/internal/lifecycle"
	"fastfeet/internal/logx"
	"fastfeet/internal/notify"
	"fastfeet/internal/ports/deliverytx"
	"fastfeet/internal/validation"
)

// PageSize is the number of deliveries per listing page.
const PageSize = 20

// Service runs delivery use cases: it loads state, asks the lifecycle engine
// for a decision, persists accepted transitions and queues notifications.
type Service struct {
	repo             deliveryRepository
	deliverymen      deliverymanReader
	engine           *lifecycle.Engine
	notifier         Dispatcher
	transitions      *prometheus.CounterVec
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithTransitionsCounter counts accepted transitions by event.
func WithTransitionsCounter(c *prometheus.CounterVec) Option {
	return func(s *Service) { s.transitions = c }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewDeliveryService - creates a new delivery Service.
func NewDeliveryService(
	r deliveryRepository,
	dms deliverymanReader,
	engine *lifecycle.Engine,
	notifier Dispatcher,
	timeout time.Duration,
	logger logx.Logger,
	opts ...Option,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if notifier == nil {
		notifier = notify.Nop()
	}
	s := &Service{
		repo:             r,
		deliverymen:      dms,
		engine:           engine,
		notifier:         notifier,
		operationTimeout: timeout,
		logger:           logger,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Get returns a non-canceled delivery with its references.
func (s *Service) Get(ctx context.Context, id int64) (*domain.DeliveryDetails, error) {
	if err := validation.ID(id); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.repo.Details(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.CanceledAt != nil {
		return nil, apperr.NotFoundf("Delivery of id %d not found.", id)
	}
	return d, nil
}

// List returns non-canceled deliveries, optionally filtered by product name.
func (s *Service) List(ctx context.Context, product string, page int) ([]domain.DeliveryDetails, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.List(ctx, domain.DeliveryFilter{Product: product}, domain.NewPage(page, PageSize))
}

// ListForDeliveryman returns a deliveryman's pending deliveries, or the
// concluded ones when delivered is set.
func (s *Service) ListForDeliveryman(ctx context.Context, deliverymanID int64, delivered bool, page int) ([]domain.DeliveryDetails, error) {
	if err := validation.ID(deliverymanID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	dm, err := s.deliverymen.Get(ctx, deliverymanID)
	if err != nil {
		return nil, err
	}
	if dm == nil {
		return nil, apperr.NotFoundf("Deliveryman of id %d not found.", deliverymanID)
	}
	f := domain.DeliveryFilter{DeliverymanID: deliverymanID, Delivered: delivered}
	return s.repo.List(ctx, f, domain.NewPage(page, PageSize))
}

// Create registers a delivery and queues a new_delivery notification.
func (s *Service) Create(ctx context.Context, product string, recipientID, deliverymanID int64) (*domain.DeliveryDetails, error) {
	if err := validation.DeliveryCreate(product, recipientID, deliverymanID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var snap domain.DeliverySnapshot
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, r, dm, err := s.engine.Create(ctx, tx, lifecycle.CreateRequest{
			Product:       product,
			RecipientID:   recipientID,
			DeliverymanID: deliverymanID,
		})
		if err != nil {
			return err
		}
		if err := tx.InsertDelivery(ctx, &d); err != nil {
			return err
		}
		snap = domain.NewSnapshot(d, *dm, *r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.accepted("delivery_created", snap.DeliveryID, deliverymanID)
	s.enqueue(ctx, notify.Task{Name: domain.TaskNewDelivery, Payload: snap})

	return s.details(ctx, snap.DeliveryID)
}

// Update applies an administrative edit.
func (s *Service) Update(ctx context.Context, upd domain.DeliveryUpdate) (*domain.DeliveryDetails, error) {
	if err := validation.DeliveryUpdate(upd); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetDeliveryForUpdate(ctx, upd.ID)
		if err != nil {
			return err
		}
		out, err := s.engine.Update(ctx, tx, d, upd)
		if err != nil {
			return err
		}
		return tx.SaveDelivery(ctx, &out)
	})
	if err != nil {
		return nil, err
	}
	return s.details(ctx, upd.ID)
}

// Withdraw records the pickup of a delivery by its deliveryman at the given time.
func (s *Service) Withdraw(ctx context.Context, deliverymanID, deliveryID int64, at time.Time) (*domain.Delivery, error) {
	if err := validation.Withdraw(deliverymanID, deliveryID, at); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out domain.Delivery
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		// serialises concurrent withdrawals of one deliveryman so the daily count is exact
		dm, err := tx.LockDeliveryman(ctx, deliverymanID)
		if err != nil {
			return err
		}
		if dm == nil {
			return apperr.NotFoundf("Deliveryman of id %d not found.", deliverymanID)
		}
		d, err := tx.GetDeliveryForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		out, err = s.engine.Withdraw(ctx, tx, d, lifecycle.WithdrawRequest{
			DeliveryID:    deliveryID,
			DeliverymanID: deliverymanID,
			At:            at,
			Now:           s.now(),
		})
		if err != nil {
			return err
		}
		return tx.SaveDelivery(ctx, &out)
	})
	if err != nil {
		return nil, err
	}

	s.accepted("delivery_withdrawn", out.ID, deliverymanID)
	return &out, nil
}

// Conclude marks a withdrawn delivery delivered with a signature.
func (s *Service) Conclude(ctx context.Context, deliverymanID, deliveryID, signatureID int64) (*domain.Delivery, error) {
	if err := validation.Conclude(deliverymanID, deliveryID, signatureID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out domain.Delivery
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetDeliveryForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		out, err = s.engine.Conclude(ctx, tx, d, lifecycle.ConcludeRequest{
			DeliveryID:    deliveryID,
			DeliverymanID: deliverymanID,
			SignatureID:   signatureID,
			Now:           s.now(),
		})
		if err != nil {
			return err
		}
		return tx.SaveDelivery(ctx, &out)
	})
	if err != nil {
		return nil, err
	}

	s.accepted("delivery_concluded", out.ID, deliverymanID)
	return &out, nil
}

// Cancel cancels a delivery directly and queues a cancel_delivery notification.
func (s *Service) Cancel(ctx context.Context, deliveryID int64) (*domain.Delivery, error) {
	if err := validation.ID(deliveryID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out domain.Delivery
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		d, err := tx.GetDeliveryForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		out, err = s.engine.Cancel(d, deliveryID, s.now())
		if err != nil {
			return err
		}
		return tx.SaveDelivery(ctx, &out)
	})
	if err != nil {
		return nil, err
	}

	s.accepted("delivery_canceled", out.ID, out.DeliverymanID)
	s.enqueueCancel(ctx, out.ID, "")
	return &out, nil
}

// CancelByProblem resolves a problem by canceling its delivery. The problem is
// soft-deleted in the same transaction.
func (s *Service) CancelByProblem(ctx context.Context, problemID int64) (*domain.Delivery, error) {
	if err := validation.ID(problemID); err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		out     domain.Delivery
		problem *domain.DeliveryProblem
	)
	err := s.repo.WithTx(ctx, func(tx deliverytx.Repository) error {
		var err error
		problem, err = tx.GetProblemForUpdate(ctx, problemID)
		if err != nil {
			return err
		}
		if problem == nil {
			return apperr.NotFoundf("Problem of id %d not found.", problemID)
		}
		d, err := tx.GetDeliveryForUpdate(ctx, problem.DeliveryID)
		if err != nil {
			return err
		}
		now := s.now()
		out, err = s.engine.Cancel(d, problem.DeliveryID, now)
		if err != nil {
			return err
		}
		if err := tx.SaveDelivery(ctx, &out); err != nil {
			return err
		}
		return tx.SoftDeleteProblem(ctx, problem.ID, now)
	})
	if err != nil {
		return nil, err
	}

	s.accepted("delivery_canceled", out.ID, out.DeliverymanID)
	s.enqueueCancel(ctx, out.ID, problem.Description)
	return &out, nil
}

func (s *Service) details(ctx context.Context, id int64) (*domain.DeliveryDetails, error) {
	d, err := s.repo.Details(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.NotFoundf("Delivery of id %d not found.", id)
	}
	return d, nil
}

func (s *Service) accepted(event string, deliveryID, deliverymanID int64) {
	if s.transitions != nil {
		s.transitions.WithLabelValues(event).Inc()
	}
	s.logger.Info("delivery transition",
		logx.String("event", event),
		logx.Int64("delivery_id", deliveryID),
		logx.Int64("deliveryman_id", deliverymanID),
	)
}

// enqueueCancel loads the canceled delivery with its parties and queues the
// notification. Failures are logged and otherwise ignored.
func (s *Service) enqueueCancel(ctx context.Context, deliveryID int64, description string) {
	d, err := s.repo.Details(ctx, deliveryID)
	if err != nil || d == nil {
		s.logger.Warn("cancel notification skipped", logx.Int64("delivery_id", deliveryID), logx.Err(err))
		return
	}
	snap := domain.NewSnapshot(d.Delivery, d.Deliveryman, d.Recipient)
	snap.Description = description
	s.enqueue(ctx, notify.Task{Name: domain.TaskCancelDelivery, Payload: snap})
}

func (s *Service) enqueue(ctx context.Context, t notify.Task) {
	if err := s.notifier.Enqueue(ctx, t); err != nil {
		s.logger.Warn("notification not queued",
			logx.String("task", string(t.Name)),
			logx.Int64("delivery_id", t.Payload.DeliveryID),
			logx.Err(err),
		)
	}
}
