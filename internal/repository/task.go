package repository

import (
	"context"

	"task-registry/internal/domain"
)

// TaskRepository exposes storage operations for Task records. A task is
// stored under the title it was created with; that key is never re-indexed,
// so a renamed task keeps answering to its original key even though its
// Title field has moved on.
type TaskRepository interface {
	// Put inserts the task keyed by its Title, silently replacing any task
	// already stored under that key (last write wins).
	Put(ctx context.Context, task *domain.Task) error
	Get(ctx context.Context, key string) (*domain.Task, error)
	// Update applies the non-nil fields of update to the task stored under
	// key. The storage key stays the same even when update renames the task.
	Update(ctx context.Context, key string, update domain.TaskUpdate) (*domain.Task, error)
	// Delete removes the task stored under key, reporting whether a removal
	// happened.
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]domain.Task, error)
}
