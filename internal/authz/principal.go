package authz

import (
	"errors"
	"fmt"
)

// Principal is the authenticated identity loaded from the session.
type Principal struct {
	ID            int64
	Role          Role
	BranchID      *int64
	WarehouseID   *int64
	BranchName    string
	WarehouseName string
	Name          string
}

// ValidateScope enforces the scope-binding invariant: CASHIER is bound to a
// branch, WAREHOUSE_KEEPER to a warehouse, and no role carries both scopes.
// ADMIN and MANAGER may be unscoped.
func (p Principal) ValidateScope() error {
	if p.BranchID != nil && p.WarehouseID != nil {
		return errors.New("authz: principal cannot be bound to both a branch and a warehouse")
	}
	switch p.Role {
	case RoleCashier:
		if p.BranchID == nil {
			return errors.New("authz: cashier requires a branch assignment")
		}
	case RoleWarehouseKeeper:
		if p.WarehouseID == nil {
			return errors.New("authz: warehouse keeper requires a warehouse assignment")
		}
	case RoleAdmin, RoleManager:
		// Unscoped by default; a manager may still be pinned to a branch.
	default:
		return fmt.Errorf("authz: unknown role %q", p.Role)
	}
	return nil
}

// EffectivePrincipal is the identity every authorization and data-scoping
// decision on the current request runs against. It is derived per request
// from the real Principal plus the URL, never persisted, and never written
// back to the session.
type EffectivePrincipal struct {
	Principal

	// IsSimulated is true exactly when an admin scope override was applied.
	IsSimulated bool

	// OriginalRole is the real principal's role, retained for the
	// exit-simulation affordance. It never widens an authorization check:
	// while simulating, every gate runs against the effective role only.
	OriginalRole Role

	// Original points back at the unmodified principal when simulating.
	Original *Principal
}

// Actual wraps a real principal as its own effective identity.
func Actual(p Principal) EffectivePrincipal {
	return EffectivePrincipal{Principal: p, OriginalRole: p.Role}
}

// ScopeKind reports which scope the effective principal is bound to, along
// with the bound identifier. ok is false for unscoped principals.
func (e EffectivePrincipal) Scope() (kind ScopeKind, id int64, ok bool) {
	if e.BranchID != nil {
		return ScopeBranch, *e.BranchID, true
	}
	if e.WarehouseID != nil {
		return ScopeWarehouse, *e.WarehouseID, true
	}
	return "", 0, false
}
