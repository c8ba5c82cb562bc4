// Package validation holds the input checks that run before any store or
// lifecycle call. Every failure is apperr.ErrInvalid with no field detail.
package validation

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
)

const (
	maxStateLen       = 2
	minPasswordLength = 6
)

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func blankPtr(s *string) bool { return s != nil && blank(*s) }

// Email reports whether s is a bare address such as "a@b.co".
func Email(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".")
}

// ID checks a path or body identifier.
func ID(id int64) error {
	if id <= 0 {
		return apperr.ErrInvalid
	}
	return nil
}

// Recipient validates a recipient for creation.
func Recipient(r domain.Recipient) error {
	if blank(r.Name) || blank(r.Street) || blank(r.Number) || blank(r.City) || blank(r.ZipCode) {
		return apperr.ErrInvalid
	}
	if blank(r.State) || utf8.RuneCountInString(r.State) > maxStateLen {
		return apperr.ErrInvalid
	}
	return nil
}

// RecipientUpdate validates a partial recipient update. At least one field must be present.
func RecipientUpdate(u domain.PartialRecipientUpdate) error {
	if u.ID <= 0 {
		return apperr.ErrInvalid
	}
	if u.Name == nil && u.Street == nil && u.Number == nil && u.Complement == nil &&
		u.State == nil && u.City == nil && u.ZipCode == nil {
		return apperr.ErrInvalid
	}
	if blankPtr(u.Name) || blankPtr(u.Street) || blankPtr(u.Number) || blankPtr(u.City) || blankPtr(u.ZipCode) {
		return apperr.ErrInvalid
	}
	if u.State != nil && (blank(*u.State) || utf8.RuneCountInString(*u.State) > maxStateLen) {
		return apperr.ErrInvalid
	}
	return nil
}

// Deliveryman validates a deliveryman for creation.
func Deliveryman(dm domain.Deliveryman) error {
	if blank(dm.Name) || !Email(dm.Email) {
		return apperr.ErrInvalid
	}
	if dm.AvatarID != nil && *dm.AvatarID <= 0 {
		return apperr.ErrInvalid
	}
	return nil
}

// DeliverymanUpdate validates a partial deliveryman update.
func DeliverymanUpdate(u domain.PartialDeliverymanUpdate) error {
	if u.ID <= 0 {
		return apperr.ErrInvalid
	}
	if u.Name == nil && u.Email == nil && u.AvatarID == nil {
		return apperr.ErrInvalid
	}
	if blankPtr(u.Name) {
		return apperr.ErrInvalid
	}
	if u.Email != nil && !Email(*u.Email) {
		return apperr.ErrInvalid
	}
	if u.AvatarID != nil && *u.AvatarID <= 0 {
		return apperr.ErrInvalid
	}
	return nil
}

// DeliveryCreate validates the administrator's create request.
func DeliveryCreate(product string, recipientID, deliverymanID int64) error {
	if blank(product) || recipientID <= 0 || deliverymanID <= 0 {
		return apperr.ErrInvalid
	}
	return nil
}

// DeliveryUpdate validates the shape of an edit. Lifecycle timestamps pass
// through untouched so that the engine can reject them with a reason.
func DeliveryUpdate(u domain.DeliveryUpdate) error {
	if u.ID <= 0 {
		return apperr.ErrInvalid
	}
	if blankPtr(u.Product) {
		return apperr.ErrInvalid
	}
	for _, id := range []*int64{u.RecipientID, u.DeliverymanID, u.SignatureID} {
		if id != nil && *id <= 0 {
			return apperr.ErrInvalid
		}
	}
	return nil
}

// Withdraw validates a pickup request.
func Withdraw(deliverymanID, deliveryID int64, at time.Time) error {
	if deliverymanID <= 0 || deliveryID <= 0 || at.IsZero() {
		return apperr.ErrInvalid
	}
	return nil
}

// Conclude validates a conclusion request.
func Conclude(deliverymanID, deliveryID, signatureID int64) error {
	if deliverymanID <= 0 || deliveryID <= 0 || signatureID <= 0 {
		return apperr.ErrInvalid
	}
	return nil
}

// Problem validates a problem report.
func Problem(deliveryID int64, description string) error {
	if deliveryID <= 0 || blank(description) {
		return apperr.ErrInvalid
	}
	return nil
}

// User validates sign-up input.
func User(name, email, password string) error {
	if blank(name) || !Email(email) || len(password) < minPasswordLength {
		return apperr.ErrInvalid
	}
	return nil
}

// UserUpdate validates a profile change. A new password needs the old one and
// a matching confirmation.
func UserUpdate(u domain.PartialUserUpdate) error {
	if u.ID <= 0 {
		return apperr.ErrInvalid
	}
	if blankPtr(u.Name) {
		return apperr.ErrInvalid
	}
	if u.Email != nil && !Email(*u.Email) {
		return apperr.ErrInvalid
	}
	if u.OldPassword != nil && len(*u.OldPassword) < minPasswordLength {
		return apperr.ErrInvalid
	}
	if u.Password == nil {
		return nil
	}
	if u.OldPassword == nil || len(*u.Password) < minPasswordLength {
		return apperr.ErrInvalid
	}
	if u.ConfirmPassword == nil || *u.ConfirmPassword != *u.Password {
		return apperr.ErrInvalid
	}
	return nil
}

// Session validates login input.
func Session(email, password string) error {
	if !Email(email) || password == "" {
		return apperr.ErrInvalid
	}
	return nil
}
