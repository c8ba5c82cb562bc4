package lifecycle

import (
	"context"
	"time"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
)

// Resolver looks up the records a transition references. A nil record with a
// nil error means the record is absent (or soft-deleted, for the Active lookups).
type Resolver interface {
	ActiveRecipient(ctx context.Context, id int64) (*domain.Recipient, error)
	ActiveDeliveryman(ctx context.Context, id int64) (*domain.Deliveryman, error)
	File(ctx context.Context, id int64) (*domain.File, error)
}

// WithdrawalCounter counts a deliveryman's open withdrawals (started, not ended,
// not canceled) whose start falls in [from, to).
type WithdrawalCounter interface {
	CountOpenWithdrawals(ctx context.Context, deliverymanID int64, from, to time.Time) (int, error)
}

// Engine applies lifecycle transitions.
type Engine struct {
	window Window
}

// New creates an Engine evaluating pickup rules in loc.
func New(loc *time.Location) *Engine {
	return &Engine{window: NewWindow(loc)}
}

// CreateRequest is the input of Create.
type CreateRequest struct {
	Product       string
	RecipientID   int64
	DeliverymanID int64
}

// Create builds a new delivery in the created state. It returns the delivery and
// the resolved parties so the caller can build a notification snapshot.
func (e *Engine) Create(ctx context.Context, refs Resolver, req CreateRequest) (domain.Delivery, *domain.Recipient, *domain.Deliveryman, error) {
	recipient, err := refs.ActiveRecipient(ctx, req.RecipientID)
	if err != nil {
		return domain.Delivery{}, nil, nil, err
	}
	if recipient == nil {
		return domain.Delivery{}, nil, nil, apperr.NotFoundf("Recipient of id %d not found.", req.RecipientID)
	}

	deliveryman, err := refs.ActiveDeliveryman(ctx, req.DeliverymanID)
	if err != nil {
		return domain.Delivery{}, nil, nil, err
	}
	if deliveryman == nil {
		return domain.Delivery{}, nil, nil, apperr.NotFoundf("Deliveryman of id %d not found.", req.DeliverymanID)
	}

	return domain.Delivery{
		Product:       req.Product,
		RecipientID:   recipient.ID,
		DeliverymanID: deliveryman.ID,
	}, recipient, deliveryman, nil
}

// WithdrawRequest is the input of Withdraw.
type WithdrawRequest struct {
	DeliveryID    int64
	DeliverymanID int64
	At            time.Time
	Now           time.Time
}

// Withdraw records the pickup of d at req.At. Guards run in order: ownership,
// not canceled, not yet withdrawn, not in the past, inside the pickup window,
// and fewer than MaxWithdrawalsPerDay open withdrawals on req.At's calendar day.
func (e *Engine) Withdraw(ctx context.Context, counter WithdrawalCounter, d *domain.Delivery, req WithdrawRequest) (domain.Delivery, error) {
	if err := owned(d, req.DeliveryID, req.DeliverymanID); err != nil {
		return domain.Delivery{}, err
	}
	if d.CanceledAt != nil {
		return domain.Delivery{}, apperr.Illegalf("Delivery of id %d canceled.", d.ID)
	}
	if d.StartDate != nil {
		return domain.Delivery{}, apperr.Illegalf("You can only withdraw a delivery one time.")
	}
	if req.At.Before(req.Now) {
		return domain.Delivery{}, apperr.Illegalf("Withdrawal with past dates are not permitted.")
	}
	if !e.window.Contains(req.At) {
		return domain.Delivery{}, apperr.Illegalf("Withdrawals can only be made between %02d:00h and %02d:00h.",
			PickupOpensHour, PickupClosesHour)
	}

	from, to := e.window.Day(req.At)
	open, err := counter.CountOpenWithdrawals(ctx, d.DeliverymanID, from, to)
	if err != nil {
		return domain.Delivery{}, err
	}
	if open >= MaxWithdrawalsPerDay {
		return domain.Delivery{}, apperr.Illegalf("You cannot perform more than %d withdrawals per day.", MaxWithdrawalsPerDay)
	}

	out := *d
	at := req.At
	out.StartDate = &at
	return out, nil
}

// ConcludeRequest is the input of Conclude.
type ConcludeRequest struct {
	DeliveryID    int64
	DeliverymanID int64
	SignatureID   int64
	Now           time.Time
}

// Conclude marks d delivered at req.Now with the given signature.
func (e *Engine) Conclude(ctx context.Context, refs Resolver, d *domain.Delivery, req ConcludeRequest) (domain.Delivery, error) {
	if err := owned(d, req.DeliveryID, req.DeliverymanID); err != nil {
		return domain.Delivery{}, err
	}
	if d.CanceledAt != nil {
		return domain.Delivery{}, apperr.Illegalf("Delivery of id %d canceled.", d.ID)
	}
	if d.StartDate == nil {
		return domain.Delivery{}, apperr.Illegalf("You can not conclude a delivery without start date.")
	}
	if d.State().Terminal() {
		return domain.Delivery{}, apperr.Illegalf("Delivery of id %d already concluded.", d.ID)
	}

	signature, err := refs.File(ctx, req.SignatureID)
	if err != nil {
		return domain.Delivery{}, err
	}
	if signature == nil {
		return domain.Delivery{}, apperr.NotFoundf("Signature of id %d not found.", req.SignatureID)
	}

	out := *d
	now := req.Now
	sid := signature.ID
	out.EndDate = &now
	out.SignatureID = &sid
	return out, nil
}

// Cancel sets canceled_at on d. Only a delivery that was never withdrawn can be
// canceled; picked-up deliveries end through Conclude.
func (e *Engine) Cancel(d *domain.Delivery, deliveryID int64, now time.Time) (domain.Delivery, error) {
	if d == nil {
		return domain.Delivery{}, apperr.NotFoundf("Delivery of id %d not found.", deliveryID)
	}
	switch st := d.State(); {
	case st == domain.StateCanceled:
		return domain.Delivery{}, apperr.Illegalf("This delivery has already been canceled.")
	case st.Terminal():
		return domain.Delivery{}, apperr.Illegalf("Delivery of id %d already concluded.", d.ID)
	case st == domain.StateWithdrawn:
		return domain.Delivery{}, apperr.Illegalf("Delivery of id %d already started.", d.ID)
	}

	out := *d
	out.CanceledAt = &now
	return out, nil
}

// Update applies an administrative edit. Lifecycle timestamps can never be set
// here; reference changes are checked only when the value actually changes.
func (e *Engine) Update(ctx context.Context, refs Resolver, d *domain.Delivery, upd domain.DeliveryUpdate) (domain.Delivery, error) {
	if d == nil || d.CanceledAt != nil {
		return domain.Delivery{}, apperr.NotFoundf("Delivery of id %d not found.", upd.ID)
	}
	switch {
	case upd.CanceledAt != nil:
		return domain.Delivery{}, apperr.Illegalf("The cancellation date cannot be modified.")
	case upd.StartDate != nil:
		return domain.Delivery{}, apperr.Illegalf("The start date cannot be modified.")
	case upd.EndDate != nil:
		return domain.Delivery{}, apperr.Illegalf("The end date cannot be modified.")
	}

	out := *d
	if upd.Product != nil {
		out.Product = *upd.Product
	}

	if upd.RecipientID != nil && *upd.RecipientID != d.RecipientID {
		r, err := refs.ActiveRecipient(ctx, *upd.RecipientID)
		if err != nil {
			return domain.Delivery{}, err
		}
		if r == nil {
			return domain.Delivery{}, apperr.NotFoundf("Recipient of id %d not found.", *upd.RecipientID)
		}
		out.RecipientID = r.ID
	}

	if upd.DeliverymanID != nil && *upd.DeliverymanID != d.DeliverymanID {
		dm, err := refs.ActiveDeliveryman(ctx, *upd.DeliverymanID)
		if err != nil {
			return domain.Delivery{}, err
		}
		if dm == nil {
			return domain.Delivery{}, apperr.NotFoundf("Deliveryman of id %d not found.", *upd.DeliverymanID)
		}
		out.DeliverymanID = dm.ID
	}

	if upd.SignatureID != nil && (d.SignatureID == nil || *upd.SignatureID != *d.SignatureID) {
		f, err := refs.File(ctx, *upd.SignatureID)
		if err != nil {
			return domain.Delivery{}, err
		}
		if f == nil {
			return domain.Delivery{}, apperr.NotFoundf("Signature of id %d not found.", *upd.SignatureID)
		}
		sid := f.ID
		out.SignatureID = &sid
	}

	return out, nil
}

func owned(d *domain.Delivery, deliveryID, deliverymanID int64) error {
	if d == nil || d.DeliverymanID != deliverymanID {
		return apperr.NotFoundf("Delivery of id %d not found.", deliveryID)
	}
	return nil
}
