package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fastfeet/internal/domain"
	"fastfeet/internal/ports/deliverytx"
)

// DeliveryRepo represents delivery repository.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

// WithTx opens a transaction and executes fn within it.
func (r *DeliveryRepo) WithTx(ctx context.Context, fn func(tx deliverytx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// rollback on panic
	defer func() {
		if p := recover(); p != nil {
			err = tx.Rollback(ctx)
			if err != nil {
				panic(err)
			}
			panic(p)
		}
	}()

	wrapped := &TxRepo{tx: tx}

	if err := fn(wrapped); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// Details returns a delivery with its references, canceled or not. Nil when absent.
func (r *DeliveryRepo) Details(ctx context.Context, id int64) (*domain.DeliveryDetails, error) {
	var row detailsRow
	err := r.db.QueryRow(ctx, detailsSelect+` WHERE d.id = $1`, id).Scan(row.dest()...)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %d: %w", id, err)
	}
	out := row.finish()
	return &out, nil
}

// List returns non-canceled deliveries ordered by id. With a deliveryman set,
// f.Delivered selects concluded deliveries instead of pending ones.
func (r *DeliveryRepo) List(ctx context.Context, f domain.DeliveryFilter, page domain.Page) ([]domain.DeliveryDetails, error) {
	q := detailsSelect + ` WHERE d.canceled_at IS NULL`
	args := make([]any, 0, 4)
	if f.Product != "" {
		args = append(args, "%"+f.Product+"%")
		q += fmt.Sprintf(" AND d.product ILIKE $%d", len(args))
	}
	if f.DeliverymanID > 0 {
		args = append(args, f.DeliverymanID)
		q += fmt.Sprintf(" AND d.deliveryman_id = $%d", len(args))
		if f.Delivered {
			q += " AND d.end_date IS NOT NULL"
		} else {
			q += " AND d.end_date IS NULL"
		}
	}
	args = append(args, page.Size, page.Offset())
	q += fmt.Sprintf(" ORDER BY d.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return collectDetails(rows, page.Size)
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// LockDeliveryman locks an active deliveryman row until the transaction ends.
func (r *TxRepo) LockDeliveryman(ctx context.Context, id int64) (*domain.Deliveryman, error) {
	var dm domain.Deliveryman
	err := r.tx.QueryRow(ctx, `
        SELECT id, name, email, avatar_id, deleted_at
        FROM deliverymen
        WHERE id = $1 AND deleted_at IS NULL
        FOR UPDATE
    `, id).Scan(&dm.ID, &dm.Name, &dm.Email, &dm.AvatarID, &dm.DeletedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock deliveryman %d: %w", id, err)
	}
	return &dm, nil
}

// GetDeliveryForUpdate loads and locks a delivery row.
func (r *TxRepo) GetDeliveryForUpdate(ctx context.Context, id int64) (*domain.Delivery, error) {
	var d domain.Delivery
	err := r.tx.QueryRow(ctx, `SELECT `+deliveryColumns+`
        FROM deliveries d
        WHERE d.id = $1
        FOR UPDATE
    `, id).Scan(deliveryDest(&d)...)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %d for update: %w", id, err)
	}
	return &d, nil
}

// CountOpenWithdrawals counts started, unfinished, non-canceled deliveries of a
// deliveryman whose start falls in [from, to).
func (r *TxRepo) CountOpenWithdrawals(ctx context.Context, deliverymanID int64, from, to time.Time) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM deliveries
        WHERE deliveryman_id = $1
          AND start_date >= $2 AND start_date < $3
          AND end_date IS NULL
          AND canceled_at IS NULL
    `, deliverymanID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count withdrawals of deliveryman %d: %w", deliverymanID, err)
	}
	return n, nil
}

// InsertDelivery - insert a new delivery.
func (r *TxRepo) InsertDelivery(ctx context.Context, d *domain.Delivery) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO deliveries (product, recipient_id, deliveryman_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `, d.Product, d.RecipientID, d.DeliverymanID).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

// SaveDelivery writes every mutable column of d. A delivery whose markers
// break the lifecycle invariants is refused before touching the row.
func (r *TxRepo) SaveDelivery(ctx context.Context, d *domain.Delivery) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("save delivery %d: %w", d.ID, err)
	}
	err := r.tx.QueryRow(ctx, `
        UPDATE deliveries
        SET product = $2,
            recipient_id = $3,
            deliveryman_id = $4,
            signature_id = $5,
            start_date = $6,
            end_date = $7,
            canceled_at = $8,
            updated_at = now()
        WHERE id = $1
        RETURNING updated_at
    `, d.ID, d.Product, d.RecipientID, d.DeliverymanID, d.SignatureID,
		d.StartDate, d.EndDate, d.CanceledAt).Scan(&d.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return fmt.Errorf("delivery %d not found", d.ID)
		}
		return fmt.Errorf("save delivery %d: %w", d.ID, err)
	}
	return nil
}

// ActiveRecipient returns a recipient that is not soft-deleted.
func (r *TxRepo) ActiveRecipient(ctx context.Context, id int64) (*domain.Recipient, error) {
	return getRecipient(ctx, r.tx, id)
}

// ActiveDeliveryman returns a deliveryman that is not soft-deleted.
func (r *TxRepo) ActiveDeliveryman(ctx context.Context, id int64) (*domain.Deliveryman, error) {
	return getDeliveryman(ctx, r.tx, id)
}

// File returns file metadata.
func (r *TxRepo) File(ctx context.Context, id int64) (*domain.File, error) {
	return getFile(ctx, r.tx, id)
}

// GetProblemForUpdate loads and locks an open problem.
func (r *TxRepo) GetProblemForUpdate(ctx context.Context, id int64) (*domain.DeliveryProblem, error) {
	var p domain.DeliveryProblem
	err := r.tx.QueryRow(ctx, `
        SELECT id, delivery_id, description, created_at, deleted_at
        FROM delivery_problems
        WHERE id = $1 AND deleted_at IS NULL
        FOR UPDATE
    `, id).Scan(&p.ID, &p.DeliveryID, &p.Description, &p.CreatedAt, &p.DeletedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get problem %d for update: %w", id, err)
	}
	return &p, nil
}

// SoftDeleteProblem marks a problem as resolved.
func (r *TxRepo) SoftDeleteProblem(ctx context.Context, id int64, at time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE delivery_problems
        SET deleted_at = $2, updated_at = now()
        WHERE id = $1 AND deleted_at IS NULL
    `, id, at)
	if err != nil {
		return fmt.Errorf("delete problem %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("problem %d not found", id)
	}
	return nil
}
