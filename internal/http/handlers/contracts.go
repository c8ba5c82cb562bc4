package handlers

import (
	"context"
	"io"
	"time"

	"fastfeet/internal/domain"
)

type recipientUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Recipient, error)
	List(ctx context.Context, q string, page int) ([]domain.Recipient, error)
	Create(ctx context.Context, r domain.Recipient) (*domain.Recipient, error)
	Update(ctx context.Context, u domain.PartialRecipientUpdate) (*domain.Recipient, error)
	Delete(ctx context.Context, id int64) error
}

type deliverymanUsecase interface {
	Get(ctx context.Context, id int64) (*domain.Deliveryman, error)
	List(ctx context.Context, q string, page int) ([]domain.Deliveryman, error)
	Create(ctx context.Context, dm domain.Deliveryman) (*domain.Deliveryman, error)
	Update(ctx context.Context, u domain.PartialDeliverymanUpdate) (*domain.Deliveryman, error)
	Delete(ctx context.Context, id int64) error
}

type deliveryUsecase interface {
	Get(ctx context.Context, id int64) (*domain.DeliveryDetails, error)
	List(ctx context.Context, product string, page int) ([]domain.DeliveryDetails, error)
	ListForDeliveryman(ctx context.Context, deliverymanID int64, delivered bool, page int) ([]domain.DeliveryDetails, error)
	Create(ctx context.Context, product string, recipientID, deliverymanID int64) (*domain.DeliveryDetails, error)
	Update(ctx context.Context, upd domain.DeliveryUpdate) (*domain.DeliveryDetails, error)
	Withdraw(ctx context.Context, deliverymanID, deliveryID int64, at time.Time) (*domain.Delivery, error)
	Conclude(ctx context.Context, deliverymanID, deliveryID, signatureID int64) (*domain.Delivery, error)
	Cancel(ctx context.Context, deliveryID int64) (*domain.Delivery, error)
	CancelByProblem(ctx context.Context, problemID int64) (*domain.Delivery, error)
}

type problemUsecase interface {
	Create(ctx context.Context, deliveryID int64, description string) (*domain.DeliveryProblem, error)
	ListByDelivery(ctx context.Context, deliveryID int64, page int) ([]domain.DeliveryProblem, error)
	ListOpen(ctx context.Context, page int) ([]domain.ProblemDetails, error)
}

type userUsecase interface {
	Create(ctx context.Context, name, email, password string) (*domain.User, error)
	Update(ctx context.Context, upd domain.PartialUserUpdate) (*domain.User, error)
	Session(ctx context.Context, email, password string) (*domain.Session, error)
}

type fileUsecase interface {
	Store(ctx context.Context, originalName string, body io.Reader) (*domain.File, error)
	URL(path string) string
}

// URLFunc turns a stored file path into its public address.
type URLFunc func(path string) string
