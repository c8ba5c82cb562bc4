package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
)

const uniqueViolation = "23505"

func noRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// uniqueConflict turns a unique-key violation into apperr.ErrConflict carrying reason.
// Any other error yields nil.
func uniqueConflict(err error, reason string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflictf("%s", reason)
	}
	return nil
}

const deliveryColumns = `d.id, d.product, d.recipient_id, d.deliveryman_id, d.signature_id,
        d.start_date, d.end_date, d.canceled_at, d.created_at, d.updated_at`

// detailsSelect joins a delivery with every record it references. Soft-deleted
// parties are still joined so history stays readable.
const detailsSelect = `SELECT ` + deliveryColumns + `,
        r.id, r.name, r.street, r.number, r.complement, r.state, r.city, r.zip_code, r.deleted_at,
        m.id, m.name, m.email, m.avatar_id, m.deleted_at,
        a.name, a.path,
        s.name, s.path
    FROM deliveries d
    JOIN recipients r ON r.id = d.recipient_id
    JOIN deliverymen m ON m.id = d.deliveryman_id
    LEFT JOIN files a ON a.id = m.avatar_id
    LEFT JOIN files s ON s.id = d.signature_id`

func deliveryDest(d *domain.Delivery) []any {
	return []any{
		&d.ID, &d.Product, &d.RecipientID, &d.DeliverymanID, &d.SignatureID,
		&d.StartDate, &d.EndDate, &d.CanceledAt, &d.CreatedAt, &d.UpdatedAt,
	}
}

type detailsRow struct {
	out                    domain.DeliveryDetails
	avatarName, avatarPath *string
	sigName, sigPath       *string
}

func (row *detailsRow) dest() []any {
	d := &row.out
	dest := deliveryDest(&d.Delivery)
	return append(dest,
		&d.Recipient.ID, &d.Recipient.Name, &d.Recipient.Street, &d.Recipient.Number,
		&d.Recipient.Complement, &d.Recipient.State, &d.Recipient.City, &d.Recipient.ZipCode,
		&d.Recipient.DeletedAt,
		&d.Deliveryman.ID, &d.Deliveryman.Name, &d.Deliveryman.Email, &d.Deliveryman.AvatarID,
		&d.Deliveryman.DeletedAt,
		&row.avatarName, &row.avatarPath,
		&row.sigName, &row.sigPath,
	)
}

func (row *detailsRow) finish() domain.DeliveryDetails {
	d := row.out
	if d.Deliveryman.AvatarID != nil && row.avatarPath != nil {
		d.Deliveryman.Avatar = &domain.File{ID: *d.Deliveryman.AvatarID, Name: deref(row.avatarName), Path: *row.avatarPath}
	}
	if d.SignatureID != nil && row.sigPath != nil {
		d.Signature = &domain.File{ID: *d.SignatureID, Name: deref(row.sigName), Path: *row.sigPath}
	}
	return d
}

func collectDetails(rows pgx.Rows, capacity int) ([]domain.DeliveryDetails, error) {
	defer rows.Close()
	out := make([]domain.DeliveryDetails, 0, capacity)
	for rows.Next() {
		var row detailsRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		out = append(out, row.finish())
	}
	return out, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
