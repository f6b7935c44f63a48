package postgres

import (
	"context"
	"errors"

	"github.com/baharkarakas/netbank-dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type usersRepo struct{ pool *pgxpool.Pool }

func (r *usersRepo) Create(ctx context.Context, loginID, displayName, hash string) (models.User, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users(id, login_id, display_name, password_hash) VALUES($1,$2,$3,$4)`,
		id, loginID, displayName, hash,
	)
	if err != nil {
		return models.User{}, err
	}
	return r.GetByLoginID(ctx, loginID)
}

func (r *usersRepo) GetByLoginID(ctx context.Context, loginID string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT id::text, login_id, display_name, password_hash, created_at FROM users WHERE login_id=$1`, loginID,
	).Scan(&u.ID, &u.LoginID, &u.DisplayName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, models.ErrNotFound
	}
	return u, err
}
