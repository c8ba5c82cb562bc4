package domain

import "time"

// Recipient is a postal destination.
type Recipient struct {
	ID         int64
	Name       string
	Street     string
	Number     string
	Complement string
	State      string
	City       string
	ZipCode    string
	DeletedAt  *time.Time
}

// PartialRecipientUpdate carries optional fields; nil means unchanged.
type PartialRecipientUpdate struct {
	ID         int64
	Name       *string
	Street     *string
	Number     *string
	Complement *string
	State      *string
	City       *string
	ZipCode    *string
}
