package authz

// The evaluator answers authorization questions against an effective
// principal. Every function here is total and fails closed: missing data,
// unknown flags, and unknown resources all deny, never error.

// SatisfiesRoles reports whether the effective role meets a role
// requirement under the hierarchy ADMIN > MANAGER > WAREHOUSE_KEEPER >
// CASHIER: the check passes when the effective role is listed explicitly or
// sits at or above the lowest required tier. An empty requirement denies
// everyone except ADMIN.
func SatisfiesRoles(e EffectivePrincipal, required ...Role) bool {
	if e.Role == RoleAdmin {
		return true
	}
	minTier := 0
	for _, r := range required {
		if r == e.Role {
			return true
		}
		tier := r.Tier()
		if tier == 0 {
			continue
		}
		if minTier == 0 || tier < minTier {
			minTier = tier
		}
	}
	if minTier == 0 {
		return false
	}
	return e.Role.Tier() >= minTier
}

// SatisfiesRolesStrict requires literal membership in the required set with
// no hierarchy widening. Callers opt into this variant explicitly; even
// ADMIN must be listed to pass.
func SatisfiesRolesStrict(e EffectivePrincipal, required ...Role) bool {
	for _, r := range required {
		if r == e.Role {
			return true
		}
	}
	return false
}

// Flag names a per-branch or per-warehouse boolean feature toggle.
type Flag string

// Feature flags resolved from branch/warehouse settings.
const (
	FlagCashierInventoryEdit   Flag = "allowCashierInventoryEdit"
	FlagWarehouseInventoryEdit Flag = "allowWarehouseInventoryEdit"
	FlagReturnsByCashier       Flag = "allowReturnsByCashier"
	FlagOpenAccount            Flag = "openAccount"
)

// ScopeSettings holds the feature flags loaded for one branch or warehouse.
// A nil *ScopeSettings means "not loaded yet" and every flag reads false.
type ScopeSettings struct {
	Kind  ScopeKind
	ID    int64
	Flags map[Flag]bool
}

// Enabled reports whether the named flag is set. Unknown flags are false.
func (s *ScopeSettings) Enabled(flag Flag) bool {
	if s == nil {
		return false
	}
	return s.Flags[flag]
}

// HasPermission resolves a named feature flag for the effective principal.
// ADMIN always passes. For every other role the flag must be explicitly
// enabled in the already-loaded settings for the principal's scope; absent
// settings and unrecognized names deny.
func HasPermission(e EffectivePrincipal, flag Flag, settings *ScopeSettings) bool {
	if e.Role == RoleAdmin {
		return true
	}
	if settings == nil {
		return false
	}
	if kind, id, ok := e.Scope(); !ok || settings.Kind != kind || settings.ID != id {
		// Settings loaded for a different scope never apply.
		return false
	}
	return settings.Enabled(flag)
}

// Action is a CRUD verb used by the resource permission table.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource names an authorizable domain object.
type Resource string

const (
	ResourceSales       Resource = "sales"
	ResourceReturns     Resource = "returns"
	ResourceInventory   Resource = "inventory"
	ResourceTransfers   Resource = "transfers"
	ResourceCustomers   Resource = "customers"
	ResourceVouchers    Resource = "vouchers"
	ResourceSalespeople Resource = "salespeople"
	ResourceUsers       Resource = "users"
	ResourceBranches    Resource = "branches"
	ResourceWarehouses  Resource = "warehouses"
	ResourceSettings    Resource = "settings"
)

// actionGrants is the static resource/action table. ADMIN is omitted from
// the sets because CanPerformAction short-circuits it; listing a resource
// with an empty set documents "admin only".
var actionGrants = map[Resource]map[Action][]Role{
	ResourceSales: {
		ActionCreate: {RoleCashier, RoleManager},
		ActionRead:   {RoleCashier, RoleManager},
		ActionUpdate: {RoleManager},
		ActionDelete: {},
	},
	ResourceReturns: {
		ActionCreate: {RoleCashier, RoleManager},
		ActionRead:   {RoleCashier, RoleManager},
		ActionDelete: {},
	},
	ResourceInventory: {
		ActionRead:   {RoleCashier, RoleWarehouseKeeper, RoleManager},
		ActionUpdate: {RoleWarehouseKeeper, RoleManager},
	},
	ResourceTransfers: {
		ActionCreate: {RoleWarehouseKeeper, RoleManager},
		ActionRead:   {RoleWarehouseKeeper, RoleManager},
		ActionUpdate: {RoleManager},
	},
	ResourceCustomers: {
		ActionCreate: {RoleCashier, RoleManager},
		ActionRead:   {RoleCashier, RoleManager},
		ActionUpdate: {RoleManager},
	},
	ResourceVouchers: {
		ActionCreate: {RoleManager},
		ActionRead:   {RoleManager},
	},
	ResourceSalespeople: {
		ActionRead: {RoleManager},
	},
	ResourceUsers: {
		ActionRead: {},
	},
	ResourceBranches: {
		ActionRead: {RoleCashier, RoleWarehouseKeeper, RoleManager},
	},
	ResourceWarehouses: {
		ActionRead: {RoleCashier, RoleWarehouseKeeper, RoleManager},
	},
	ResourceSettings: {
		ActionRead: {},
	},
}

// CanPerformAction consults the static table for (resource, action). ADMIN
// always passes; unknown resources and actions deny.
func CanPerformAction(e EffectivePrincipal, action Action, resource Resource) bool {
	if e.Role == RoleAdmin {
		return true
	}
	actions, ok := actionGrants[resource]
	if !ok {
		return false
	}
	roles, ok := actions[action]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == e.Role {
			return true
		}
	}
	return false
}
