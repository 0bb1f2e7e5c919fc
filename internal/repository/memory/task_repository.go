package memory

import (
	"context"
	"sync"

	"task-registry/internal/domain"
	"task-registry/internal/repository"
)

// TaskRepository keeps tasks in process memory, keyed by the title they were
// created under. Iteration preserves insertion order; overwriting an existing
// key keeps the key's original position.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
	order []string
}

func NewTaskRepository() repository.TaskRepository {
	return &TaskRepository{
		tasks: make(map[string]*domain.Task),
	}
}

func (r *TaskRepository) Put(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *task
	if _, exists := r.tasks[task.Title]; !exists {
		r.order = append(r.order, task.Title)
	}
	r.tasks[task.Title] = &stored
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, key string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *TaskRepository) Update(ctx context.Context, key string, update domain.TaskUpdate) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[key]
	if !ok {
		return nil, repository.ErrNotFound
	}

	// The storage key deliberately stays put on rename; only the field moves.
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.DueDate != nil {
		due := *update.DueDate
		task.DueDate = &due
	}
	if update.Assignee != nil {
		task.Assignee = *update.Assignee
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}

	copied := *task
	return &copied, nil
}

func (r *TaskRepository) Delete(ctx context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[key]; !ok {
		return false, nil
	}
	delete(r.tasks, key)
	for i, title := range r.order {
		if title == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]domain.Task, 0, len(r.order))
	for _, key := range r.order {
		tasks = append(tasks, *r.tasks[key])
	}
	return tasks, nil
}
