package authz

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role identifies a dashboard role.
type Role string

// Known roles, ordered from widest to narrowest authority.
const (
	RoleAdmin           Role = "ADMIN"
	RoleManager         Role = "MANAGER"
	RoleWarehouseKeeper Role = "WAREHOUSE_KEEPER"
	RoleCashier         Role = "CASHIER"
)

// roleTier orders roles for hierarchical checks. A role at a higher tier
// implicitly holds every grant of the tiers below it.
var roleTier = map[Role]int{
	RoleCashier:         1,
	RoleWarehouseKeeper: 2,
	RoleManager:         3,
	RoleAdmin:           4,
}

var titleCaser = cases.Title(language.English)

// ParseRole normalizes an externally supplied role string into the internal
// enum. External spellings use lowercase with hyphens ("warehouse-keeper");
// internal values are uppercase with underscores. Unrecognized input returns
// ok=false so callers fall back to their real principal instead of carrying
// a corrupt role forward.
func ParseRole(raw string) (Role, bool) {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	role := Role(strings.ToUpper(normalized))
	if _, ok := roleTier[role]; !ok {
		return "", false
	}
	return role, true
}

// Valid reports whether the role is one of the known enum values.
func (r Role) Valid() bool {
	_, ok := roleTier[r]
	return ok
}

// Tier returns the hierarchy tier of the role, 0 for unknown roles.
func (r Role) Tier() int {
	return roleTier[r]
}

// DisplayName renders the role for UI consumption, e.g. "Warehouse Keeper".
func (r Role) DisplayName() string {
	return titleCaser.String(strings.ToLower(strings.ReplaceAll(string(r), "_", " ")))
}
