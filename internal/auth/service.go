package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
	"github.com/ZubairAhmed90/multipos-sub002/internal/users"
)

// Registry persists session metadata alongside the Redis store, so active
// sessions survive audits and expired ones can be purged by the worker.
type Registry interface {
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Service wraps authentication business rules.
type Service struct {
	users    users.Repository
	registry Registry
}

// NewService constructs a new Service.
func NewService(userRepo users.Repository, registry Registry) *Service {
	return &Service{users: userRepo, registry: registry}
}

// Authenticate validates email/password credentials. Every failure mode
// collapses into ErrInvalidCredentials so responses do not leak which part
// was wrong.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.registry.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.registry.DeleteSession(ctx, id)
}

// PurgeExpired removes expired session records. Called by the worker.
func (s *Service) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.registry.DeleteExpired(ctx, now)
}
