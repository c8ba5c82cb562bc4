package domain

import (
	"errors"
	"time"
)

// DeliveryState is derived from the timestamps on a Delivery; it is never stored.
type DeliveryState string

// Delivery states. Concluded and Canceled are terminal.
const (
	StateCreated   DeliveryState = "created"
	StateWithdrawn DeliveryState = "withdrawn"
	StateConcluded DeliveryState = "concluded"
	StateCanceled  DeliveryState = "canceled"
)

// Terminal reports whether no further lifecycle transition is possible.
func (s DeliveryState) Terminal() bool {
	return s == StateConcluded || s == StateCanceled
}

// Delivery is one parcel in transit.
type Delivery struct {
	ID            int64
	Product       string
	RecipientID   int64
	DeliverymanID int64
	SignatureID   *int64
	StartDate     *time.Time
	EndDate       *time.Time
	CanceledAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// State derives the lifecycle state from the markers.
func (d Delivery) State() DeliveryState {
	switch {
	case d.CanceledAt != nil:
		return StateCanceled
	case d.EndDate != nil:
		return StateConcluded
	case d.StartDate != nil:
		return StateWithdrawn
	default:
		return StateCreated
	}
}

// Invariant violations reported by Delivery.Validate.
var (
	ErrEndWithoutStart      = errors.New("delivery: end_date set without start_date")
	ErrCanceledAfterStart   = errors.New("delivery: canceled_at set on a withdrawn delivery")
	ErrConcludedAndCanceled = errors.New("delivery: both end_date and canceled_at set")
)

// Validate checks the structural invariants of the timestamp markers.
func (d Delivery) Validate() error {
	if d.EndDate != nil && d.StartDate == nil {
		return ErrEndWithoutStart
	}
	if d.CanceledAt != nil && d.EndDate != nil {
		return ErrConcludedAndCanceled
	}
	if d.CanceledAt != nil && d.StartDate != nil {
		return ErrCanceledAfterStart
	}
	return nil
}

// DeliveryUpdate is an administrative edit. Nil means "leave unchanged".
// StartDate, EndDate and CanceledAt exist only so that attempts to set them
// through this path can be detected and rejected.
type DeliveryUpdate struct {
	ID            int64
	Product       *string
	RecipientID   *int64
	DeliverymanID *int64
	SignatureID   *int64
	StartDate     *time.Time
	EndDate       *time.Time
	CanceledAt    *time.Time
}

// DeliveryDetails is a delivery together with the records it references.
type DeliveryDetails struct {
	Delivery
	Recipient   Recipient
	Deliveryman Deliveryman
	Signature   *File
}

// DeliveryFilter narrows delivery listings.
type DeliveryFilter struct {
	Product       string
	DeliverymanID int64
	// Delivered selects concluded deliveries; otherwise only open ones are listed
	// when DeliverymanID is set.
	Delivered bool
}
