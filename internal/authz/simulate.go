package authz

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query parameters carrying a scope simulation request. They are part of the
// dashboard URL so simulated views stay shareable and bookmarkable.
const (
	QueryRole  = "role"
	QueryScope = "scope"
	QueryID    = "id"
)

// ScopeKind distinguishes branch-bound from warehouse-bound scopes.
type ScopeKind string

const (
	ScopeBranch    ScopeKind = "branch"
	ScopeWarehouse ScopeKind = "warehouse"
)

// ScopeOverride is a fully parsed simulation request. It only ever exists in
// a valid, complete form: ParseScopeOverride returns ok=false for anything
// partial or malformed, so a half-built override can never reach a check.
type ScopeOverride struct {
	Role Role
	Kind ScopeKind
	ID   int64
}

// ParseScopeOverride extracts a simulation triple from query parameters.
// All three parameters must be present and well formed; a non-numeric or
// non-positive id, an unknown role, or an unknown scope kind all yield
// ok=false.
func ParseScopeOverride(q url.Values) (ScopeOverride, bool) {
	rawRole := q.Get(QueryRole)
	rawScope := q.Get(QueryScope)
	rawID := q.Get(QueryID)
	if rawRole == "" || rawScope == "" || rawID == "" {
		return ScopeOverride{}, false
	}

	role, ok := ParseRole(rawRole)
	if !ok {
		return ScopeOverride{}, false
	}

	var kind ScopeKind
	switch ScopeKind(rawScope) {
	case ScopeBranch:
		kind = ScopeBranch
	case ScopeWarehouse:
		kind = ScopeWarehouse
	default:
		return ScopeOverride{}, false
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return ScopeOverride{}, false
	}

	return ScopeOverride{Role: role, Kind: kind, ID: id}, true
}

// Resolve computes the effective principal for the current request. Only an
// ADMIN principal may simulate; for every other role the override is inert
// and the real principal passes through unchanged. Resolve is pure and must
// be re-run whenever the principal or the URL changes.
func Resolve(real Principal, q url.Values) EffectivePrincipal {
	if real.Role != RoleAdmin {
		return Actual(real)
	}
	override, ok := ParseScopeOverride(q)
	if !ok {
		return Actual(real)
	}

	effective := EffectivePrincipal{
		Principal:    real,
		IsSimulated:  true,
		OriginalRole: real.Role,
		Original:     &real,
	}
	effective.Role = override.Role
	effective.BranchID = nil
	effective.WarehouseID = nil
	effective.BranchName = ""
	effective.WarehouseName = ""
	switch override.Kind {
	case ScopeBranch:
		id := override.ID
		effective.BranchID = &id
		// Placeholder name: the simulated view may not have the real
		// entity loaded yet.
		effective.BranchName = fmt.Sprintf("Branch %d", id)
	case ScopeWarehouse:
		id := override.ID
		effective.WarehouseID = &id
		effective.WarehouseName = fmt.Sprintf("Warehouse %d", id)
	}
	return effective
}
