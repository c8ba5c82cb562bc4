package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fastfeet/internal/domain"
)

// DeliverymanRepo represents deliveryman repository.
type DeliverymanRepo struct{ db *pgxpool.Pool }

// NewDeliverymanRepo creates a new DeliverymanRepo.
func NewDeliverymanRepo(db *pgxpool.Pool) *DeliverymanRepo { return &DeliverymanRepo{db: db} }

const deliverymanSelect = `SELECT m.id, m.name, m.email, m.avatar_id, m.deleted_at, a.name, a.path
    FROM deliverymen m
    LEFT JOIN files a ON a.id = m.avatar_id`

type deliverymanRow struct {
	dm                     domain.Deliveryman
	avatarName, avatarPath *string
}

func (row *deliverymanRow) dest() []any {
	return []any{&row.dm.ID, &row.dm.Name, &row.dm.Email, &row.dm.AvatarID, &row.dm.DeletedAt, &row.avatarName, &row.avatarPath}
}

func (row *deliverymanRow) finish() domain.Deliveryman {
	dm := row.dm
	if dm.AvatarID != nil && row.avatarPath != nil {
		dm.Avatar = &domain.File{ID: *dm.AvatarID, Name: deref(row.avatarName), Path: *row.avatarPath}
	}
	return dm
}

func getDeliveryman(ctx context.Context, q querier, id int64) (*domain.Deliveryman, error) {
	var row deliverymanRow
	err := q.QueryRow(ctx, deliverymanSelect+` WHERE m.id = $1 AND m.deleted_at IS NULL`, id).Scan(row.dest()...)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get deliveryman %d: %w", id, err)
	}
	dm := row.finish()
	return &dm, nil
}

// Get returns an active deliveryman with avatar, or nil.
func (r *DeliverymanRepo) Get(ctx context.Context, id int64) (*domain.Deliveryman, error) {
	return getDeliveryman(ctx, r.db, id)
}

// List returns active deliverymen ordered by id, optionally filtered by name.
func (r *DeliverymanRepo) List(ctx context.Context, name string, page domain.Page) ([]domain.Deliveryman, error) {
	rows, err := r.db.Query(ctx, deliverymanSelect+`
        WHERE m.deleted_at IS NULL
          AND ($1 = '' OR m.name ILIKE '%' || $1 || '%')
        ORDER BY m.id
        LIMIT $2 OFFSET $3
    `, name, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list deliverymen: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Deliveryman, 0, page.Size)
	for rows.Next() {
		var row deliverymanRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		out = append(out, row.finish())
	}
	return out, rows.Err()
}

// Create - creates a new deliveryman. A taken email yields apperr.ErrConflict.
func (r *DeliverymanRepo) Create(ctx context.Context, dm *domain.Deliveryman) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO deliverymen (name, email, avatar_id) VALUES ($1, $2, $3) RETURNING id`,
		dm.Name, dm.Email, dm.AvatarID).Scan(&id)
	if err != nil {
		if conflict := uniqueConflict(err, "Deliveryman already exists."); conflict != nil {
			return 0, conflict
		}
		return 0, fmt.Errorf("create deliveryman: %w", err)
	}
	return id, nil
}

// UpdatePartial applies a partial update to an active deliveryman and returns true if a row was affected.
func (r *DeliverymanRepo) UpdatePartial(ctx context.Context, u domain.PartialDeliverymanUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE deliverymen
        SET
            name       = COALESCE($2, name),
            email      = COALESCE($3, email),
            avatar_id  = COALESCE($4, avatar_id),
            updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL
    `, u.ID, u.Name, u.Email, u.AvatarID)
	if err != nil {
		if conflict := uniqueConflict(err, "Email already in use."); conflict != nil {
			return false, conflict
		}
		return false, fmt.Errorf("update deliveryman %d: %w", u.ID, err)
	}
	return ct.RowsAffected() > 0, nil
}

// SoftDelete marks an active deliveryman deleted. It returns false when none matched.
func (r *DeliverymanRepo) SoftDelete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE deliverymen SET deleted_at = now(), updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL
    `, id)
	if err != nil {
		return false, fmt.Errorf("delete deliveryman %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
