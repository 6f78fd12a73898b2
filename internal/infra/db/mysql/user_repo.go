package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/users"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	const q = `INSERT INTO users (id, email, name, created_at) VALUES (?,?,?,?);`
	if _, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Name, created); err != nil {
		return nil, err
	}
	out := *u
	out.CreatedAt = created
	return &out, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	const q = `SELECT id, email, name, created_at FROM users WHERE id=? LIMIT 1;`
	var u domain.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", scansNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=?)`, id).Scan(&exists)
	return exists, err
}
