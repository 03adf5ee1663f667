package users

import (
	"time"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
)

// User represents a dashboard user account with its role and scope binding.
type User struct {
	ID            int64
	Email         string
	PasswordHash  string
	Name          string
	Role          authz.Role
	BranchID      *int64
	WarehouseID   *int64
	BranchName    string
	WarehouseName string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Principal projects the account into the identity the authorization layer
// works with.
func (u User) Principal() authz.Principal {
	return authz.Principal{
		ID:            u.ID,
		Role:          u.Role,
		BranchID:      u.BranchID,
		WarehouseID:   u.WarehouseID,
		BranchName:    u.BranchName,
		WarehouseName: u.WarehouseName,
		Name:          u.Name,
	}
}

// CreateInput carries the fields for a new account.
type CreateInput struct {
	Email       string
	Password    string
	Name        string
	Role        authz.Role
	BranchID    *int64
	WarehouseID *int64
}

// UpdateInput carries mutable account fields.
type UpdateInput struct {
	Name        string
	Role        authz.Role
	BranchID    *int64
	WarehouseID *int64
	IsActive    bool
}
