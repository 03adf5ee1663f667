package authz

import "strings"

// PathRule maps a URL path prefix to the roles allowed to view it. ADMIN is
// never listed; path checks short-circuit it like every other evaluator.
type PathRule struct {
	Prefix  string
	Allowed []Role
}

// PathMap is the static accessibility table, loaded once at startup and
// immutable afterwards. Matching is longest-prefix on "/" segment
// boundaries; paths that match no rule are denied for non-admin roles.
type PathMap struct {
	rules []PathRule
}

// NewPathMap builds a PathMap from explicit rules.
func NewPathMap(rules []PathRule) *PathMap {
	owned := make([]PathRule, len(rules))
	copy(owned, rules)
	return &PathMap{rules: owned}
}

// DefaultPathMap declares accessibility for Multipos dashboard sections.
func DefaultPathMap() *PathMap {
	return NewPathMap([]PathRule{
		{Prefix: "/api/sales", Allowed: []Role{RoleManager, RoleCashier}},
		{Prefix: "/api/returns", Allowed: []Role{RoleManager, RoleCashier}},
		{Prefix: "/api/customers", Allowed: []Role{RoleManager, RoleCashier}},
		{Prefix: "/api/inventory", Allowed: []Role{RoleManager, RoleWarehouseKeeper, RoleCashier}},
		{Prefix: "/api/transfers", Allowed: []Role{RoleManager, RoleWarehouseKeeper}},
		{Prefix: "/api/vouchers", Allowed: []Role{RoleManager}},
		{Prefix: "/api/salespeople", Allowed: []Role{RoleManager}},
		{Prefix: "/api/branches", Allowed: []Role{RoleManager, RoleWarehouseKeeper, RoleCashier}},
		{Prefix: "/api/warehouses", Allowed: []Role{RoleManager, RoleWarehouseKeeper, RoleCashier}},
		{Prefix: "/api/users", Allowed: []Role{}},
		{Prefix: "/api/settings", Allowed: []Role{}},
	})
}

// IsAccessible reports whether role may view path. Unmatched paths deny for
// every role except ADMIN.
func (m *PathMap) IsAccessible(path string, role Role) bool {
	if role == RoleAdmin {
		return true
	}
	rule, ok := m.match(path)
	if !ok {
		return false
	}
	for _, r := range rule.Allowed {
		if r == role {
			return true
		}
	}
	return false
}

func (m *PathMap) match(path string) (PathRule, bool) {
	var best PathRule
	found := false
	for _, rule := range m.rules {
		if !prefixMatches(path, rule.Prefix) {
			continue
		}
		if !found || len(rule.Prefix) > len(best.Prefix) {
			best = rule
			found = true
		}
	}
	return best, found
}

// prefixMatches requires the prefix to end on a path segment boundary, so
// "/api/sales" does not capture "/api/salespeople".
func prefixMatches(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if len(path) == len(prefix) {
		return true
	}
	return path[len(prefix)] == '/'
}
