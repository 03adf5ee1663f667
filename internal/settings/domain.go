// Package settings resolves per-branch and per-warehouse feature flags.
// It is the out-of-band collaborator the permission evaluator reads; the
// evaluator itself never fetches.
package settings

import (
	"fmt"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
)

// KnownFlags lists the flags the dashboard understands. Writes outside this
// set are rejected; reads outside it resolve to false in the evaluator.
var KnownFlags = []authz.Flag{
	authz.FlagCashierInventoryEdit,
	authz.FlagWarehouseInventoryEdit,
	authz.FlagReturnsByCashier,
	authz.FlagOpenAccount,
}

// IsKnownFlag reports whether name is a recognized flag.
func IsKnownFlag(name authz.Flag) bool {
	for _, f := range KnownFlags {
		if f == name {
			return true
		}
	}
	return false
}

// ParseScopeKind validates an externally supplied scope kind.
func ParseScopeKind(raw string) (authz.ScopeKind, error) {
	switch authz.ScopeKind(raw) {
	case authz.ScopeBranch:
		return authz.ScopeBranch, nil
	case authz.ScopeWarehouse:
		return authz.ScopeWarehouse, nil
	default:
		return "", fmt.Errorf("settings: unknown scope kind %q", raw)
	}
}

func scopeKey(kind authz.ScopeKind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}
