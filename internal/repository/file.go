package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fastfeet/internal/domain"
)

// FileRepo stores upload metadata.
type FileRepo struct{ db *pgxpool.Pool }

// NewFileRepo creates a new FileRepo.
func NewFileRepo(db *pgxpool.Pool) *FileRepo { return &FileRepo{db: db} }

func getFile(ctx context.Context, q querier, id int64) (*domain.File, error) {
	var f domain.File
	err := q.QueryRow(ctx, `SELECT id, name, path FROM files WHERE id = $1`, id).Scan(&f.ID, &f.Name, &f.Path)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file %d: %w", id, err)
	}
	return &f, nil
}

// Get returns file metadata, or nil.
func (r *FileRepo) Get(ctx context.Context, id int64) (*domain.File, error) {
	return getFile(ctx, r.db, id)
}

// Create inserts file metadata and sets f.ID.
func (r *FileRepo) Create(ctx context.Context, f *domain.File) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO files (name, path) VALUES ($1, $2) RETURNING id`, f.Name, f.Path,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}
