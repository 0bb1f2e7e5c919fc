package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task-registry/internal/domain"
	"task-registry/internal/repository"
)

// ErrTaskNotFound is returned when an operation references a task title with
// no record behind it.
var ErrTaskNotFound = errors.New("task not found")

// TaskService coordinates task level operations backed by repositories.
// Task identity is "keyed by title, last write wins": creating a task under
// an existing title replaces the previous record rather than failing.
type TaskService interface {
	CreateTask(ctx context.Context, title, description string, dueDate *domain.Date, assignee string) (*domain.Task, error)
	GetTask(ctx context.Context, title string) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	UpdateTask(ctx context.Context, title string, update domain.TaskUpdate) (*domain.Task, error)
	DeleteTask(ctx context.Context, title string) (bool, error)
	SearchTasks(ctx context.Context, keyword string) ([]domain.Task, error)
	FilterTasks(ctx context.Context, completed *bool, dueDate *domain.Date) ([]domain.Task, error)
}

type taskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) TaskService {
	return &taskService{
		tasks: tasks,
		users: users,
	}
}

func (s *taskService) CreateTask(ctx context.Context, title, description string, dueDate *domain.Date, assignee string) (*domain.Task, error) {
	task := &domain.Task{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Assignee:    assignee,
		Completed:   false,
	}

	if err := s.tasks.Put(ctx, task); err != nil {
		return nil, fmt.Errorf("store task: %w", err)
	}
	return task, nil
}

func (s *taskService) GetTask(ctx context.Context, title string) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, title)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.List(ctx)
}

func (s *taskService) UpdateTask(ctx context.Context, title string, update domain.TaskUpdate) (*domain.Task, error) {
	task, err := s.tasks.Update(ctx, title, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, title string) (bool, error) {
	return s.tasks.Delete(ctx, title)
}

// SearchTasks returns every task whose title, description or assignee
// display name contains keyword, compared case-insensitively. The assignee
// name is resolved through the user store at search time.
func (s *taskService) SearchTasks(ctx context.Context, keyword string) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	matched := make([]domain.Task, 0)
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Title), needle) ||
			strings.Contains(strings.ToLower(task.Description), needle) {
			matched = append(matched, task)
			continue
		}
		if task.Assignee == "" {
			continue
		}
		assignee, err := s.users.GetByUsername(ctx, task.Assignee)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve assignee: %w", err)
		}
		if strings.Contains(strings.ToLower(assignee.Name), needle) {
			matched = append(matched, task)
		}
	}
	return matched, nil
}

// FilterTasks narrows the full task collection by the supplied predicates.
// Both predicates are optional and compose as a logical AND; with neither
// supplied the full set comes back.
func (s *taskService) FilterTasks(ctx context.Context, completed *bool, dueDate *domain.Date) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if completed != nil && task.Completed != *completed {
			continue
		}
		if dueDate != nil {
			if task.DueDate == nil || !task.DueDate.Equal(*dueDate) {
				continue
			}
		}
		filtered = append(filtered, task)
	}
	return filtered, nil
}
