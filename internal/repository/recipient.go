package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fastfeet/internal/domain"
)

// RecipientRepo represents recipient repository.
type RecipientRepo struct{ db *pgxpool.Pool }

// NewRecipientRepo creates a new RecipientRepo.
func NewRecipientRepo(db *pgxpool.Pool) *RecipientRepo { return &RecipientRepo{db: db} }

const recipientColumns = `id, name, street, number, complement, state, city, zip_code, deleted_at`

func recipientDest(r *domain.Recipient) []any {
	return []any{&r.ID, &r.Name, &r.Street, &r.Number, &r.Complement, &r.State, &r.City, &r.ZipCode, &r.DeletedAt}
}

func getRecipient(ctx context.Context, q querier, id int64) (*domain.Recipient, error) {
	var r domain.Recipient
	err := q.QueryRow(ctx,
		`SELECT `+recipientColumns+` FROM recipients WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(recipientDest(&r)...)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipient %d: %w", id, err)
	}
	return &r, nil
}

// Get returns an active recipient, or nil.
func (r *RecipientRepo) Get(ctx context.Context, id int64) (*domain.Recipient, error) {
	return getRecipient(ctx, r.db, id)
}

// List returns active recipients ordered by id, optionally filtered by name.
func (r *RecipientRepo) List(ctx context.Context, name string, page domain.Page) ([]domain.Recipient, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+recipientColumns+`
        FROM recipients
        WHERE deleted_at IS NULL
          AND ($1 = '' OR name ILIKE '%' || $1 || '%')
        ORDER BY id
        LIMIT $2 OFFSET $3
    `, name, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Recipient, 0, page.Size)
	for rows.Next() {
		var rec domain.Recipient
		if err := rows.Scan(recipientDest(&rec)...); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Create - creates a new recipient.
func (r *RecipientRepo) Create(ctx context.Context, rec *domain.Recipient) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO recipients (name, street, number, complement, state, city, zip_code)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, rec.Name, rec.Street, rec.Number, rec.Complement, rec.State, rec.City, rec.ZipCode).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create recipient: %w", err)
	}
	return id, nil
}

// UpdatePartial applies a partial update to an active recipient and returns true if a row was affected.
func (r *RecipientRepo) UpdatePartial(ctx context.Context, u domain.PartialRecipientUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE recipients
        SET
            name       = COALESCE($2, name),
            street     = COALESCE($3, street),
            number     = COALESCE($4, number),
            complement = COALESCE($5, complement),
            state      = COALESCE($6, state),
            city       = COALESCE($7, city),
            zip_code   = COALESCE($8, zip_code),
            updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL
    `, u.ID, u.Name, u.Street, u.Number, u.Complement, u.State, u.City, u.ZipCode)
	if err != nil {
		return false, fmt.Errorf("update recipient %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// SoftDelete marks an active recipient deleted. It returns false when none matched.
func (r *RecipientRepo) SoftDelete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE recipients SET deleted_at = now(), updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL
    `, id)
	if err != nil {
		return false, fmt.Errorf("delete recipient %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
