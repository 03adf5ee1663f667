package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func effectiveWithRole(role Role) EffectivePrincipal {
	return Actual(Principal{ID: 10, Role: role})
}

func effectiveCashier(branchID int64) EffectivePrincipal {
	return Actual(Principal{ID: 11, Role: RoleCashier, BranchID: &branchID})
}

func TestSatisfiesRolesHierarchy(t *testing.T) {
	keeper := effectiveWithRole(RoleWarehouseKeeper)

	require.True(t, SatisfiesRoles(keeper, RoleCashier))
	require.True(t, SatisfiesRoles(keeper, RoleWarehouseKeeper))
	require.False(t, SatisfiesRoles(keeper, RoleManager))

	manager := effectiveWithRole(RoleManager)
	require.True(t, SatisfiesRoles(manager, RoleCashier))
	require.True(t, SatisfiesRoles(manager, RoleWarehouseKeeper))

	cashier := effectiveWithRole(RoleCashier)
	require.False(t, SatisfiesRoles(cashier, RoleWarehouseKeeper))
}

func TestSatisfiesRolesWideningNeverRevokes(t *testing.T) {
	keeper := effectiveWithRole(RoleWarehouseKeeper)

	require.True(t, SatisfiesRoles(keeper, RoleCashier))
	// Adding more roles to the requirement can only widen access.
	require.True(t, SatisfiesRoles(keeper, RoleCashier, RoleWarehouseKeeper))
	require.True(t, SatisfiesRoles(keeper, RoleCashier, RoleManager))
}

func TestSatisfiesRolesEmptyRequirement(t *testing.T) {
	require.True(t, SatisfiesRoles(effectiveWithRole(RoleAdmin)))
	require.False(t, SatisfiesRoles(effectiveWithRole(RoleManager)))
	require.False(t, SatisfiesRoles(effectiveWithRole(RoleCashier)))
}

func TestSatisfiesRolesStrict(t *testing.T) {
	manager := effectiveWithRole(RoleManager)

	require.True(t, SatisfiesRolesStrict(manager, RoleManager))
	require.False(t, SatisfiesRolesStrict(manager, RoleCashier))

	// No admin shortcut: the strict variant is literal membership.
	admin := effectiveWithRole(RoleAdmin)
	require.False(t, SatisfiesRolesStrict(admin, RoleCashier))
	require.True(t, SatisfiesRolesStrict(admin, RoleAdmin, RoleCashier))
}

func TestAdminBypassesEveryEvaluator(t *testing.T) {
	admin := effectiveWithRole(RoleAdmin)

	require.True(t, SatisfiesRoles(admin, RoleCashier))
	require.True(t, SatisfiesRoles(admin, "NONSENSE"))
	require.True(t, HasPermission(admin, "NONEXISTENT_FLAG", nil))
	require.True(t, CanPerformAction(admin, ActionDelete, ResourceSales))
	require.True(t, CanPerformAction(admin, Action("explode"), Resource("nothing")))
}

func TestSimulatedAdminLosesBypass(t *testing.T) {
	branchID := int64(7)
	real := Principal{ID: 1, Role: RoleAdmin}
	simulated := EffectivePrincipal{
		Principal:    Principal{ID: 1, Role: RoleCashier, BranchID: &branchID},
		IsSimulated:  true,
		OriginalRole: RoleAdmin,
		Original:     &real,
	}

	// All gates run against the effective role only.
	require.False(t, SatisfiesRoles(simulated, RoleManager))
	require.False(t, CanPerformAction(simulated, ActionDelete, ResourceSales))
	require.False(t, HasPermission(simulated, FlagReturnsByCashier, nil))
}

func TestHasPermissionFailsClosed(t *testing.T) {
	cashier := effectiveCashier(5)

	// No settings loaded at all.
	require.False(t, HasPermission(cashier, FlagCashierInventoryEdit, nil))

	// Settings loaded but flag absent.
	loaded := &ScopeSettings{Kind: ScopeBranch, ID: 5, Flags: map[Flag]bool{}}
	require.False(t, HasPermission(cashier, FlagCashierInventoryEdit, loaded))

	// Unknown flag name with settings present.
	loaded.Flags[FlagCashierInventoryEdit] = true
	require.False(t, HasPermission(cashier, "NONEXISTENT_FLAG", loaded))

	// Flag explicitly enabled.
	require.True(t, HasPermission(cashier, FlagCashierInventoryEdit, loaded))
}

func TestHasPermissionRejectsForeignScope(t *testing.T) {
	cashier := effectiveCashier(5)

	otherBranch := &ScopeSettings{Kind: ScopeBranch, ID: 6, Flags: map[Flag]bool{FlagCashierInventoryEdit: true}}
	require.False(t, HasPermission(cashier, FlagCashierInventoryEdit, otherBranch))

	warehouse := &ScopeSettings{Kind: ScopeWarehouse, ID: 5, Flags: map[Flag]bool{FlagCashierInventoryEdit: true}}
	require.False(t, HasPermission(cashier, FlagCashierInventoryEdit, warehouse))
}

func TestCanPerformActionTable(t *testing.T) {
	keeper := effectiveWithRole(RoleWarehouseKeeper)
	cashier := effectiveWithRole(RoleCashier)
	manager := effectiveWithRole(RoleManager)

	require.True(t, CanPerformAction(keeper, ActionUpdate, ResourceInventory))
	require.False(t, CanPerformAction(cashier, ActionUpdate, ResourceInventory))
	require.True(t, CanPerformAction(cashier, ActionCreate, ResourceSales))
	require.False(t, CanPerformAction(cashier, ActionDelete, ResourceSales))
	require.False(t, CanPerformAction(manager, ActionDelete, ResourceSales))
	require.True(t, CanPerformAction(manager, ActionCreate, ResourceTransfers))
	require.False(t, CanPerformAction(cashier, ActionRead, ResourceTransfers))

	// Unknown resource or action fails closed.
	require.False(t, CanPerformAction(manager, ActionRead, Resource("ledgers")))
	require.False(t, CanPerformAction(manager, Action("approve"), ResourceSales))
}
