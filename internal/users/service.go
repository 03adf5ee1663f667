package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
)

// Service wraps user account business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get fetches one account by ID.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new account. The role/scope binding is validated
// before anything is persisted.
func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, errors.New("users: email required")
	}
	if len(input.Password) < 8 {
		return nil, errors.New("users: password must be at least 8 characters")
	}

	user := User{
		Email:       email,
		Name:        strings.TrimSpace(input.Name),
		Role:        input.Role,
		BranchID:    input.BranchID,
		WarehouseID: input.WarehouseID,
	}
	if err := user.Principal().ValidateScope(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	return s.repo.Create(ctx, user)
}

// Update applies mutable fields to an existing account.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (*User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Role = input.Role
	existing.BranchID = input.BranchID
	existing.WarehouseID = input.WarehouseID
	existing.IsActive = input.IsActive
	if err := existing.Principal().ValidateScope(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, *existing)
}

// Deactivate disables an account without deleting its history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

// PrincipalByID resolves the active account behind a session into a
// principal. Inactive and missing accounts resolve to an error so the
// identity layer treats the session as anonymous.
func (s *Service) PrincipalByID(ctx context.Context, id int64) (authz.Principal, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return authz.Principal{}, err
	}
	if !user.IsActive {
		// A deactivated account reads the same as a missing one.
		return authz.Principal{}, shared.ErrNotFound
	}
	return user.Principal(), nil
}
