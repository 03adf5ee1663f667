package authz

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func adminPrincipal() Principal {
	return Principal{ID: 1, Role: RoleAdmin, Name: "Root"}
}

func cashierPrincipal(branchID int64) Principal {
	return Principal{ID: 2, Role: RoleCashier, BranchID: &branchID, BranchName: "Main", Name: "Cash"}
}

func simQuery(role, scope, id string) url.Values {
	q := url.Values{}
	if role != "" {
		q.Set(QueryRole, role)
	}
	if scope != "" {
		q.Set(QueryScope, scope)
	}
	if id != "" {
		q.Set(QueryID, id)
	}
	return q
}

func TestParseRoleNormalization(t *testing.T) {
	cases := map[string]Role{
		"cashier":          RoleCashier,
		"CASHIER":          RoleCashier,
		"warehouse-keeper": RoleWarehouseKeeper,
		"Warehouse Keeper": RoleWarehouseKeeper,
		"WAREHOUSE_KEEPER": RoleWarehouseKeeper,
		"manager":          RoleManager,
		"admin":            RoleAdmin,
	}
	for raw, want := range cases {
		got, ok := ParseRole(raw)
		require.True(t, ok, "parse %q", raw)
		require.Equal(t, want, got)
	}

	for _, raw := range []string{"", "superuser", "cashier2", "warehouse--"} {
		_, ok := ParseRole(raw)
		require.False(t, ok, "parse %q should fail", raw)
	}
}

func TestResolveAdminBranchOverride(t *testing.T) {
	effective := Resolve(adminPrincipal(), simQuery("cashier", "branch", "7"))

	require.True(t, effective.IsSimulated)
	require.Equal(t, RoleCashier, effective.Role)
	require.Equal(t, RoleAdmin, effective.OriginalRole)
	require.NotNil(t, effective.BranchID)
	require.EqualValues(t, 7, *effective.BranchID)
	require.Nil(t, effective.WarehouseID)
	require.Equal(t, "Branch 7", effective.BranchName)
	require.NotNil(t, effective.Original)
	require.Equal(t, RoleAdmin, effective.Original.Role)
}

func TestResolveAdminWarehouseOverride(t *testing.T) {
	effective := Resolve(adminPrincipal(), simQuery("warehouse-keeper", "warehouse", "12"))

	require.True(t, effective.IsSimulated)
	require.Equal(t, RoleWarehouseKeeper, effective.Role)
	require.NotNil(t, effective.WarehouseID)
	require.EqualValues(t, 12, *effective.WarehouseID)
	require.Nil(t, effective.BranchID)
	require.Equal(t, "Warehouse 12", effective.WarehouseName)
}

func TestResolveIgnoredForNonAdmin(t *testing.T) {
	real := cashierPrincipal(3)
	effective := Resolve(real, simQuery("warehouse-keeper", "warehouse", "12"))

	require.False(t, effective.IsSimulated)
	require.Equal(t, RoleCashier, effective.Role)
	require.NotNil(t, effective.BranchID)
	require.EqualValues(t, 3, *effective.BranchID)
	require.Nil(t, effective.WarehouseID)
	require.Equal(t, "Main", effective.BranchName)
	require.Nil(t, effective.Original)
}

func TestResolveWithoutOverrideParams(t *testing.T) {
	effective := Resolve(adminPrincipal(), url.Values{})

	require.False(t, effective.IsSimulated)
	require.Equal(t, RoleAdmin, effective.Role)
	require.Equal(t, RoleAdmin, effective.OriginalRole)
}

func TestResolveMalformedOverrideFallsBack(t *testing.T) {
	cases := []url.Values{
		simQuery("cashier", "branch", "abc"),
		simQuery("cashier", "branch", "-4"),
		simQuery("cashier", "branch", "0"),
		simQuery("cashier", "region", "7"),
		simQuery("superuser", "branch", "7"),
		simQuery("cashier", "branch", ""),
		simQuery("cashier", "", "7"),
		simQuery("", "branch", "7"),
	}
	for _, q := range cases {
		effective := Resolve(adminPrincipal(), q)
		require.False(t, effective.IsSimulated, "query %v must not simulate", q)
		require.Equal(t, RoleAdmin, effective.Role)
		require.Nil(t, effective.BranchID)
		require.Nil(t, effective.WarehouseID)
	}
}

func TestParseScopeOverrideTotal(t *testing.T) {
	override, ok := ParseScopeOverride(simQuery("warehouse-keeper", "warehouse", "12"))
	require.True(t, ok)
	require.Equal(t, ScopeOverride{Role: RoleWarehouseKeeper, Kind: ScopeWarehouse, ID: 12}, override)

	_, ok = ParseScopeOverride(simQuery("cashier", "branch", "12.5"))
	require.False(t, ok)
}

func TestValidateScope(t *testing.T) {
	branchID := int64(1)
	warehouseID := int64(2)

	require.NoError(t, Principal{Role: RoleAdmin}.ValidateScope())
	require.NoError(t, Principal{Role: RoleManager}.ValidateScope())
	require.NoError(t, Principal{Role: RoleCashier, BranchID: &branchID}.ValidateScope())
	require.NoError(t, Principal{Role: RoleWarehouseKeeper, WarehouseID: &warehouseID}.ValidateScope())

	require.Error(t, Principal{Role: RoleCashier}.ValidateScope())
	require.Error(t, Principal{Role: RoleWarehouseKeeper}.ValidateScope())
	require.Error(t, Principal{Role: RoleCashier, BranchID: &branchID, WarehouseID: &warehouseID}.ValidateScope())
	require.Error(t, Principal{Role: "SUPERUSER"}.ValidateScope())
}
