package domain

import "time"

// Deliveryman picks up and concludes deliveries. Email is unique.
type Deliveryman struct {
	ID        int64
	Name      string
	Email     string
	AvatarID  *int64
	Avatar    *File
	DeletedAt *time.Time
}

// PartialDeliverymanUpdate carries optional fields; nil means unchanged.
type PartialDeliverymanUpdate struct {
	ID       int64
	Name     *string
	Email    *string
	AvatarID *int64
}
