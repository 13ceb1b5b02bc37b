package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/users"
)

type UserRepository struct{ db *sql.DB }

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (id, full_name, username, email, password_hash, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, u.ID, u.FullName, u.Username, u.Email, u.PasswordHash, created)
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT id, full_name, username, email, password_hash, created_at
FROM users WHERE email=$1 LIMIT 1;`
	return r.scan(r.db.QueryRowContext(ctx, q, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
SELECT id, full_name, username, email, password_hash, created_at
FROM users WHERE id=$1 LIMIT 1;`
	return r.scan(r.db.QueryRowContext(ctx, q, id))
}

func (r *UserRepository) scan(row *sql.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
