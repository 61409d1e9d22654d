package auth

import (
	"context"

	"gudang/internal/core/id"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Exists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, userID id.ID) error
}
