package users

import "context"

// Repository port
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	Exists(ctx context.Context, id string) (bool, error)
}
