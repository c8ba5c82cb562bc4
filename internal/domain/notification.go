package domain

import "time"

// TaskName identifies a notification task on the queue.
type TaskName string

// Known notification tasks.
const (
	TaskNewDelivery    TaskName = "new_delivery"
	TaskCancelDelivery TaskName = "cancel_delivery"
)

// Valid reports whether the task is one the worker understands.
func (t TaskName) Valid() bool {
	return t == TaskNewDelivery || t == TaskCancelDelivery
}

// DeliverySnapshot is the denormalised view of a delivery carried by a notification.
type DeliverySnapshot struct {
	DeliveryID  int64               `json:"delivery_id"`
	Product     string              `json:"product"`
	Deliveryman SnapshotDeliveryman `json:"deliveryman"`
	Recipient   SnapshotRecipient   `json:"recipient"`
	StartDate   *time.Time          `json:"start_date,omitempty"`
	EndDate     *time.Time          `json:"end_date,omitempty"`
	CanceledAt  *time.Time          `json:"canceled_at,omitempty"`
	Description string              `json:"description,omitempty"`
}

// SnapshotDeliveryman is the part of a deliveryman a notification needs.
type SnapshotDeliveryman struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SnapshotRecipient is the part of a recipient a notification needs.
type SnapshotRecipient struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	Number  string `json:"number"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

// NewSnapshot builds a snapshot from a delivery and its parties.
func NewSnapshot(d Delivery, dm Deliveryman, r Recipient) DeliverySnapshot {
	return DeliverySnapshot{
		DeliveryID: d.ID,
		Product:    d.Product,
		Deliveryman: SnapshotDeliveryman{
			ID:    dm.ID,
			Name:  dm.Name,
			Email: dm.Email,
		},
		Recipient: SnapshotRecipient{
			Name:    r.Name,
			Street:  r.Street,
			Number:  r.Number,
			City:    r.City,
			State:   r.State,
			ZipCode: r.ZipCode,
		},
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		CanceledAt: d.CanceledAt,
	}
}
