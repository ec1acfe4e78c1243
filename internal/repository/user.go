package repository

import (
	"context"

	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	q DBTX
}

const userColumns = `id, email, name, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get user")
	}
	return u, nil
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)
	`, email))
	if err != nil {
		return nil, translate(err, "get user by email")
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, email, name string) (*models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `
		INSERT INTO users (email, name)
		VALUES ($1, $2)
		RETURNING `+userColumns,
		email, name))
	if err != nil {
		return nil, translate(err, "create user")
	}
	return u, nil
}
