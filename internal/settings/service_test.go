package settings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
)

type stubRepo struct {
	flags    map[string]map[authz.Flag]bool
	getCalls int
	failGet  bool
}

func (r *stubRepo) GetFlags(ctx context.Context, kind authz.ScopeKind, scopeID int64) (map[authz.Flag]bool, error) {
	r.getCalls++
	if r.failGet {
		return nil, errors.New("boom")
	}
	flags := r.flags[scopeKey(kind, scopeID)]
	out := make(map[authz.Flag]bool, len(flags))
	for k, v := range flags {
		out[k] = v
	}
	return out, nil
}

func (r *stubRepo) SetFlag(ctx context.Context, kind authz.ScopeKind, scopeID int64, name authz.Flag, enabled bool) error {
	key := scopeKey(kind, scopeID)
	if r.flags == nil {
		r.flags = map[string]map[authz.Flag]bool{}
	}
	if r.flags[key] == nil {
		r.flags[key] = map[authz.Flag]bool{}
	}
	r.flags[key][name] = enabled
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testService(t *testing.T, repo Repository) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, client, discardLogger(), time.Minute), client
}

func TestServiceLoadPopulatesSnapshot(t *testing.T) {
	repo := &stubRepo{flags: map[string]map[authz.Flag]bool{
		"branch:1": {authz.FlagReturnsByCashier: true},
	}}
	svc, _ := testService(t, repo)
	ctx := context.Background()

	require.Nil(t, svc.Cached(authz.ScopeBranch, 1))

	loaded, err := svc.Load(ctx, authz.ScopeBranch, 1)
	require.NoError(t, err)
	require.True(t, loaded.Enabled(authz.FlagReturnsByCashier))

	cached := svc.Cached(authz.ScopeBranch, 1)
	require.NotNil(t, cached)
	require.True(t, cached.Enabled(authz.FlagReturnsByCashier))

	// A different scope with the same id stays empty.
	require.Nil(t, svc.Cached(authz.ScopeWarehouse, 1))
}

func TestServiceReadsThroughRedis(t *testing.T) {
	repo := &stubRepo{flags: map[string]map[authz.Flag]bool{
		"warehouse:3": {authz.FlagWarehouseInventoryEdit: true},
	}}
	svc, client := testService(t, repo)
	ctx := context.Background()

	_, err := svc.Load(ctx, authz.ScopeWarehouse, 3)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getCalls)

	// A fresh process sharing the cache never touches its repository.
	other := NewService(&stubRepo{failGet: true}, client, discardLogger(), time.Minute)
	loaded, err := other.Load(ctx, authz.ScopeWarehouse, 3)
	require.NoError(t, err)
	require.True(t, loaded.Enabled(authz.FlagWarehouseInventoryEdit))
}

func TestServiceSetFlagInvalidates(t *testing.T) {
	repo := &stubRepo{}
	svc, client := testService(t, repo)
	ctx := context.Background()

	_, err := svc.Load(ctx, authz.ScopeBranch, 7)
	require.NoError(t, err)
	require.NotNil(t, svc.Cached(authz.ScopeBranch, 7))

	require.NoError(t, svc.SetFlag(ctx, authz.ScopeBranch, 7, authz.FlagCashierInventoryEdit, true))
	require.Nil(t, svc.Cached(authz.ScopeBranch, 7))
	require.Equal(t, int64(0), client.Exists(ctx, redisKeyPrefix+"branch:7").Val())

	loaded, err := svc.Load(ctx, authz.ScopeBranch, 7)
	require.NoError(t, err)
	require.True(t, loaded.Enabled(authz.FlagCashierInventoryEdit))
}

func TestServiceRejectsUnknownFlag(t *testing.T) {
	repo := &stubRepo{}
	svc, _ := testService(t, repo)
	err := svc.SetFlag(context.Background(), authz.ScopeBranch, 1, "allowTimeTravel", true)
	require.Error(t, err)
}

func TestServiceLoadFailureLeavesNothingCached(t *testing.T) {
	svc, _ := testService(t, &stubRepo{failGet: true})
	_, err := svc.Load(context.Background(), authz.ScopeBranch, 2)
	require.Error(t, err)
	require.Nil(t, svc.Cached(authz.ScopeBranch, 2))
}
