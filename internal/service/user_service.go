package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"task-registry/internal/domain"
	"task-registry/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are
	// incorrect. An unknown username and a wrong password are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrSessionNotFound indicates the session id is unknown or has been revoked.
	ErrSessionNotFound = errors.New("session not found")
)

// Session identifies one authenticated login. Every successful Authenticate
// call mints a fresh session, so any number of logical sessions can coexist.
type Session struct {
	ID       string
	Username string
}

// UserService describes user lifecycle and session operations.
type UserService interface {
	Register(ctx context.Context, username, password, name string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, *Session, error)
	Logout(ctx context.Context, sessionID string)
	SessionUser(ctx context.Context, sessionID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository

	mu       sync.RWMutex
	sessions map[string]string // session id -> username
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{
		users:    users,
		sessions: make(map[string]string),
	}
}

func (s *userService) Register(ctx context.Context, username, password, name string) (*domain.User, error) {
	user := &domain.User{
		Username: username,
		Password: password,
		Name:     name,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, *Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return nil, nil, ErrInvalidCredentials
	}

	session := &Session{
		ID:       uuid.NewString(),
		Username: user.Username,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session.Username
	s.mu.Unlock()

	return sanitizeUser(user), session, nil
}

func (s *userService) Logout(ctx context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *userService) SessionUser(ctx context.Context, sessionID string) (*domain.User, error) {
	s.mu.RLock()
	username, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get session user: %w", err)
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		Username: user.Username,
		Name:     user.Name,
	}
}
