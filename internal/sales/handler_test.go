package sales

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
)

type memSalesRepo struct {
	sales      []Sale
	returns    []Return
	lastFilter ListFilter
}

func (r *memSalesRepo) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	r.lastFilter = filter
	return r.sales, nil
}

func (r *memSalesRepo) Create(ctx context.Context, sale Sale) (*Sale, error) {
	sale.ID = int64(len(r.sales) + 1)
	r.sales = append(r.sales, sale)
	return &sale, nil
}

func (r *memSalesRepo) Delete(ctx context.Context, id int64) error { return nil }

func (r *memSalesRepo) ListReturns(ctx context.Context, filter ListFilter) ([]Return, error) {
	r.lastFilter = filter
	return r.returns, nil
}

type memSettings struct {
	loaded     *authz.ScopeSettings
	prefetches int
}

func (s *memSettings) Cached(kind authz.ScopeKind, id int64) *authz.ScopeSettings {
	if s.loaded != nil && s.loaded.Kind == kind && s.loaded.ID == id {
		return s.loaded
	}
	return nil
}

func (s *memSettings) Prefetch(kind authz.ScopeKind, id int64) { s.prefetches++ }

func salesRouter(repo Repository, settings authz.SettingsSource) chi.Router {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, settings)
	r := chi.NewRouter()
	r.Route("/sales", func(r chi.Router) { h.MountRoutes(r) })
	r.Route("/returns", func(r chi.Router) { h.MountReturnRoutes(r) })
	return r
}

func withEffective(req *http.Request, e authz.EffectivePrincipal) *http.Request {
	return req.WithContext(authz.ContextWithEffective(req.Context(), e))
}

func branchCashier(branchID int64) authz.EffectivePrincipal {
	return authz.Actual(authz.Principal{ID: 2, Role: authz.RoleCashier, BranchID: &branchID})
}

func TestListScopedToEffectiveBranch(t *testing.T) {
	repo := &memSalesRepo{}
	router := salesRouter(repo, &memSettings{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, withEffective(httptest.NewRequest(http.MethodGet, "/sales", nil), branchCashier(5)))

	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, repo.lastFilter.BranchID)
	require.EqualValues(t, 5, *repo.lastFilter.BranchID)

	// An admin with no branch binding sees everything.
	res = httptest.NewRecorder()
	admin := authz.Actual(authz.Principal{ID: 1, Role: authz.RoleAdmin})
	router.ServeHTTP(res, withEffective(httptest.NewRequest(http.MethodGet, "/sales", nil), admin))
	require.Equal(t, http.StatusOK, res.Code)
	require.Nil(t, repo.lastFilter.BranchID)
}

func TestCreatePostsIntoOwnBranch(t *testing.T) {
	repo := &memSalesRepo{}
	router := salesRouter(repo, &memSettings{})

	body := `{"number":"INV-001","total":125.5}`
	req := withEffective(httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body)), branchCashier(5))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	require.Len(t, repo.sales, 1)
	require.EqualValues(t, 5, repo.sales[0].BranchID)
	require.EqualValues(t, 2, repo.sales[0].CreatedBy)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	router := salesRouter(&memSalesRepo{}, &memSettings{})

	req := withEffective(httptest.NewRequest(http.MethodDelete, "/sales/1", nil), branchCashier(5))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)

	// A simulated admin follows the simulated role, so a real admin in plain
	// view still passes.
	admin := authz.Actual(authz.Principal{ID: 1, Role: authz.RoleAdmin})
	req = withEffective(httptest.NewRequest(http.MethodDelete, "/sales/1", nil), admin)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusNoContent, res.Code)
}

func TestCashierReturnsNeedBranchFlag(t *testing.T) {
	settings := &memSettings{}
	router := salesRouter(&memSalesRepo{}, settings)

	// Flag not loaded: denied and a prefetch fires.
	req := withEffective(httptest.NewRequest(http.MethodGet, "/returns", nil), branchCashier(5))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)
	require.Equal(t, 1, settings.prefetches)

	// Flag loaded and enabled: allowed.
	settings.loaded = &authz.ScopeSettings{
		Kind:  authz.ScopeBranch,
		ID:    5,
		Flags: map[authz.Flag]bool{authz.FlagReturnsByCashier: true},
	}
	res = httptest.NewRecorder()
	router.ServeHTTP(res, withEffective(httptest.NewRequest(http.MethodGet, "/returns", nil), branchCashier(5)))
	require.Equal(t, http.StatusOK, res.Code)

	// Managers never depend on the flag.
	manager := authz.Actual(authz.Principal{ID: 3, Role: authz.RoleManager})
	settings.loaded = nil
	res = httptest.NewRecorder()
	router.ServeHTTP(res, withEffective(httptest.NewRequest(http.MethodGet, "/returns", nil), manager))
	require.Equal(t, http.StatusOK, res.Code)
}
