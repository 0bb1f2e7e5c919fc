package repository

import (
	"context"

	"task-registry/internal/domain"
)

// UserRepository defines storage operations for User records. Usernames are
// unique: inserting a taken username fails with ErrAlreadyExists and leaves
// the existing record untouched.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
