package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathMapSectionPolicies(t *testing.T) {
	m := DefaultPathMap()

	require.True(t, m.IsAccessible("/api/sales", RoleCashier))
	require.True(t, m.IsAccessible("/api/sales/42", RoleCashier))
	require.False(t, m.IsAccessible("/api/sales", RoleWarehouseKeeper))

	require.True(t, m.IsAccessible("/api/inventory", RoleWarehouseKeeper))
	require.True(t, m.IsAccessible("/api/transfers", RoleWarehouseKeeper))
	require.False(t, m.IsAccessible("/api/transfers", RoleCashier))

	require.True(t, m.IsAccessible("/api/vouchers", RoleManager))
	require.False(t, m.IsAccessible("/api/vouchers", RoleCashier))
}

func TestPathMapAdminSeesEverything(t *testing.T) {
	m := DefaultPathMap()

	for _, path := range []string{"/api/sales", "/api/users", "/api/settings/branch/1", "/api/unknown", "/totally/elsewhere"} {
		require.True(t, m.IsAccessible(path, RoleAdmin), path)
	}
}

func TestPathMapUnmatchedDenies(t *testing.T) {
	m := DefaultPathMap()

	for _, role := range []Role{RoleManager, RoleWarehouseKeeper, RoleCashier} {
		require.False(t, m.IsAccessible("/api/unknown", role))
		require.False(t, m.IsAccessible("/", role))
	}
}

func TestPathMapAdminOnlySections(t *testing.T) {
	m := DefaultPathMap()

	for _, role := range []Role{RoleManager, RoleWarehouseKeeper, RoleCashier} {
		require.False(t, m.IsAccessible("/api/users", role))
		require.False(t, m.IsAccessible("/api/settings/branch/3", role))
	}
}

func TestPathMapSegmentBoundary(t *testing.T) {
	m := NewPathMap([]PathRule{
		{Prefix: "/api/sales", Allowed: []Role{RoleCashier}},
		{Prefix: "/api/salespeople", Allowed: []Role{RoleManager}},
	})

	// "/api/sales" must not capture "/api/salespeople".
	require.False(t, m.IsAccessible("/api/salespeople", RoleCashier))
	require.True(t, m.IsAccessible("/api/salespeople", RoleManager))
	require.True(t, m.IsAccessible("/api/sales/7/lines", RoleCashier))
}
