package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fastfeet/internal/apperr"
	"fastfeet/internal/domain"
)

// UserRepo represents user repository.
type UserRepo struct{ db *pgxpool.Pool }

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

const userSelect = `SELECT id, name, email, password_hash, administrator FROM users`

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, userSelect+` WHERE `+where, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Administrator)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Get returns a user by id, or nil.
func (r *UserRepo) Get(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByEmail returns a user by email, or nil.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

// Create inserts a user. A taken email yields apperr.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
        INSERT INTO users (name, email, password_hash, administrator)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, u.Name, u.Email, u.PasswordHash, u.Administrator).Scan(&id)
	if err != nil {
		if conflict := uniqueConflict(err, "User already exists."); conflict != nil {
			return 0, conflict
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// Update overwrites name, email and password hash.
func (r *UserRepo) Update(ctx context.Context, u domain.User) error {
	ct, err := r.db.Exec(ctx, `
        UPDATE users
        SET name = $2, email = $3, password_hash = $4, updated_at = now()
        WHERE id = $1
    `, u.ID, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		if conflict := uniqueConflict(err, "User already exists."); conflict != nil {
			return conflict
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFoundf("User of id %d not found.", u.ID)
	}
	return nil
}

// IsAdministrator reports the administrator flag. A missing user is not an administrator.
func (r *UserRepo) IsAdministrator(ctx context.Context, id int64) (bool, error) {
	var admin bool
	err := r.db.QueryRow(ctx, `SELECT administrator FROM users WHERE id = $1`, id).Scan(&admin)
	if err != nil {
		if noRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("get administrator flag of user %d: %w", id, err)
	}
	return admin, nil
}

// EnsureAdministrator creates the administrator account when the email is unused.
// It returns true when a row was inserted.
func (r *UserRepo) EnsureAdministrator(ctx context.Context, u domain.User) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        INSERT INTO users (name, email, password_hash, administrator)
        VALUES ($1, $2, $3, TRUE)
        ON CONFLICT (email) DO NOTHING
    `, u.Name, u.Email, u.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("ensure administrator: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
