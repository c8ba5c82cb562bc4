package domain

import "time"

// DeliveryProblem is an issue reported against a delivery.
type DeliveryProblem struct {
	ID          int64
	DeliveryID  int64
	Description string
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// ProblemDetails is a problem with its delivery expanded.
type ProblemDetails struct {
	DeliveryProblem
	Delivery DeliveryDetails
}
