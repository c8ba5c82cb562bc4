package handlers

import "time"

type recipientDTO struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	State      string `json:"state"`
	City       string `json:"city"`
	ZipCode    string `json:"zip_code"`
}

type createRecipientRequest struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	State      string `json:"state"`
	City       string `json:"city"`
	ZipCode    string `json:"zip_code"`
}

type updateRecipientRequest struct {
	Name       *string `json:"name"`
	Street     *string `json:"street"`
	Number     *string `json:"number"`
	Complement *string `json:"complement"`
	State      *string `json:"state"`
	City       *string `json:"city"`
	ZipCode    *string `json:"zip_code"`
}

type fileDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

type deliverymanDTO struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	AvatarID *int64   `json:"avatar_id"`
	Avatar   *fileDTO `json:"avatar,omitempty"`
}

type createDeliverymanRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	AvatarID *int64 `json:"avatar_id"`
}

type updateDeliverymanRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	AvatarID *int64  `json:"avatar_id"`
}

type deliveryDTO struct {
	ID            int64           `json:"id"`
	Product       string          `json:"product"`
	RecipientID   int64           `json:"recipient_id"`
	DeliverymanID int64           `json:"deliveryman_id"`
	SignatureID   *int64          `json:"signature_id"`
	StartDate     *time.Time      `json:"start_date"`
	EndDate       *time.Time      `json:"end_date"`
	CanceledAt    *time.Time      `json:"canceled_at"`
	Status        string          `json:"status"`
	Recipient     *recipientDTO   `json:"recipient,omitempty"`
	Deliveryman   *deliverymanDTO `json:"deliveryman,omitempty"`
	Signature     *fileDTO        `json:"signature,omitempty"`
}

type createDeliveryRequest struct {
	Product       string `json:"product"`
	RecipientID   int64  `json:"recipient_id"`
	DeliverymanID int64  `json:"deliveryman_id"`
}

// updateDeliveryRequest accepts the lifecycle markers only so that attempts to
// edit them reach the engine and are rejected with a reason.
type updateDeliveryRequest struct {
	Product       *string    `json:"product"`
	RecipientID   *int64     `json:"recipient_id"`
	DeliverymanID *int64     `json:"deliveryman_id"`
	SignatureID   *int64     `json:"signature_id"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	CanceledAt    *time.Time `json:"canceled_at"`
}

type withdrawRequest struct {
	StartDate *time.Time `json:"start_date"`
}

type concludeRequest struct {
	SignatureID int64 `json:"signature_id"`
}

type problemDTO struct {
	ID          int64        `json:"id"`
	DeliveryID  int64        `json:"delivery_id"`
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
	Delivery    *deliveryDTO `json:"delivery,omitempty"`
}

type createProblemRequest struct {
	Description string `json:"description"`
}

type userDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	OldPassword     *string `json:"old_password"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirm_password"`
}

type sessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionDTO struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}
