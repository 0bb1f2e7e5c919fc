package memory

import (
	"context"
	"sync"

	"task-registry/internal/domain"
	"task-registry/internal/repository"
)

// UserRepository keeps users in process memory, keyed by username. All data
// is volatile and lost on process exit.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	order []string
}

func NewUserRepository() repository.UserRepository {
	return &UserRepository{
		users: make(map[string]*domain.User),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return repository.ErrAlreadyExists
	}

	stored := *user
	r.users[user.Username] = &stored
	r.order = append(r.order, user.Username)
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.order))
	for _, username := range r.order {
		users = append(users, *r.users[username])
	}
	return users, nil
}
