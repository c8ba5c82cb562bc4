package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fastfeet/internal/domain"
)

// ProblemRepo represents delivery problem repository.
type ProblemRepo struct{ db *pgxpool.Pool }

// NewProblemRepo creates a new ProblemRepo.
func NewProblemRepo(db *pgxpool.Pool) *ProblemRepo { return &ProblemRepo{db: db} }

// Create inserts a problem and fills its id and timestamp.
func (r *ProblemRepo) Create(ctx context.Context, p *domain.DeliveryProblem) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO delivery_problems (delivery_id, description)
        VALUES ($1, $2)
        RETURNING id, created_at
    `, p.DeliveryID, p.Description).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create problem: %w", err)
	}
	return nil
}

// ListByDelivery returns one page of the open problems of a delivery, newest first.
func (r *ProblemRepo) ListByDelivery(ctx context.Context, deliveryID int64, page domain.Page) ([]domain.DeliveryProblem, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, delivery_id, description, created_at, deleted_at
        FROM delivery_problems
        WHERE delivery_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, deliveryID, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list problems of delivery %d: %w", deliveryID, err)
	}
	defer rows.Close()

	out := make([]domain.DeliveryProblem, 0, page.Size)
	for rows.Next() {
		var p domain.DeliveryProblem
		if err := rows.Scan(&p.ID, &p.DeliveryID, &p.Description, &p.CreatedAt, &p.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListOpen returns every open problem with its delivery expanded, newest first.
func (r *ProblemRepo) ListOpen(ctx context.Context, page domain.Page) ([]domain.ProblemDetails, error) {
	q := `SELECT p.id, p.delivery_id, p.description, p.created_at, p.deleted_at, ` +
		detailsSelect[len("SELECT "):] + `
    JOIN delivery_problems p ON p.delivery_id = d.id
    WHERE p.deleted_at IS NULL
    ORDER BY p.created_at DESC, p.id DESC
    LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, q, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ProblemDetails, 0, page.Size)
	for rows.Next() {
		var (
			p   domain.DeliveryProblem
			row detailsRow
		)
		dest := append([]any{&p.ID, &p.DeliveryID, &p.Description, &p.CreatedAt, &p.DeletedAt}, row.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, domain.ProblemDetails{DeliveryProblem: p, Delivery: row.finish()})
	}
	return out, rows.Err()
}
