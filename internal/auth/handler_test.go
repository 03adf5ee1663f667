package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZubairAhmed90/multipos-sub002/internal/auth"
	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
	"github.com/ZubairAhmed90/multipos-sub002/internal/users"
	_ "github.com/ZubairAhmed90/multipos-sub002/testing"
)

type stubUserRepo struct {
	user    *users.User
	failGet bool
}

func (s *stubUserRepo) List(ctx context.Context) ([]users.User, error) { return nil, nil }

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	if s.failGet {
		return nil, errors.New("backend down")
	}
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user users.User) (*users.User, error) {
	return &user, nil
}

func (s *stubUserRepo) Update(ctx context.Context, user users.User) (*users.User, error) {
	return &user, nil
}

func (s *stubUserRepo) Deactivate(ctx context.Context, id int64) error { return nil }

type stubRegistry struct {
	created []string
	deleted []string
}

func (s *stubRegistry) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.created = append(s.created, id)
	return nil
}

func (s *stubRegistry) DeleteSession(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRegistry) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// commitWriter persists the session before the first byte of the response,
// the same ordering the real middleware stack uses.
type commitWriter struct {
	http.ResponseWriter
	sess      *shared.Session
	manager   *shared.SessionManager
	req       *http.Request
	committed bool
}

func (w *commitWriter) WriteHeader(statusCode int) {
	if !w.committed {
		w.committed = true
		_ = w.manager.Commit(w.req.Context(), w.ResponseWriter, w.req, w.sess)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitWriter) Write(data []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cashierAccount(t *testing.T) *users.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	branchID := int64(3)
	return &users.User{
		ID:           1,
		Email:        "cashier@test.local",
		PasswordHash: string(hashed),
		Name:         "Kasir Satu",
		Role:         authz.RoleCashier,
		BranchID:     &branchID,
		BranchName:   "Main Branch",
		IsActive:     true,
	}
}

func adminAccount(t *testing.T) *users.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &users.User{
		ID:           1,
		Email:        "admin@test.local",
		PasswordHash: string(hashed),
		Name:         "Admin",
		Role:         authz.RoleAdmin,
		IsActive:     true,
	}
}

func newAuthRouter(t *testing.T, repo users.Repository, registry auth.Registry) (chi.Router, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	userService := users.NewService(repo)
	handler := auth.NewHandler(testLogger(), auth.NewService(repo, registry), sessionManager, csrfManager, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessionManager.Load(req.Context(), req)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			ctx := shared.ContextWithSession(req.Context(), sess)
			req = req.WithContext(ctx)
			next.ServeHTTP(&commitWriter{ResponseWriter: w, sess: sess, manager: sessionManager, req: req}, req)
		})
	})
	r.Use(auth.Identity(testLogger(), userService))
	handler.MountRoutes(r)
	return r, sessionManager
}

func TestLoginSuccess(t *testing.T) {
	registry := &stubRegistry{}
	router, _ := newAuthRouter(t, &stubUserRepo{user: cashierAccount(t)}, registry)

	body := `{"email":"cashier@test.local","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		Role        string `json:"role"`
		BranchID    *int64 `json:"branch_id"`
		IsSimulated bool   `json:"is_simulated"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Role != "CASHIER" || payload.IsSimulated {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.BranchID == nil || *payload.BranchID != 3 {
		t.Fatalf("expected branch 3, got %v", payload.BranchID)
	}
	if len(registry.created) != 1 {
		t.Fatalf("expected one registered session, got %d", len(registry.created))
	}

	cookies := res.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Value == "" {
		t.Fatalf("expected a session cookie")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	router, _ := newAuthRouter(t, &stubUserRepo{user: cashierAccount(t)}, &stubRegistry{})

	body := `{"email":"cashier@test.local","password":"wrongpass1"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	registry := &stubRegistry{}
	router, sessionManager := newAuthRouter(t, &stubUserRepo{user: cashierAccount(t)}, registry)

	sessionID := loginFor(t, router, "cashier@test.local")

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sessionID})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if len(registry.deleted) != 1 {
		t.Fatalf("expected one removed session, got %d", len(registry.deleted))
	}
}

func TestMeAnonymous(t *testing.T) {
	router, _ := newAuthRouter(t, &stubUserRepo{}, &stubRegistry{})

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/me", nil))

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestMeUnavailableWhenBackendFails(t *testing.T) {
	repo := &stubUserRepo{user: cashierAccount(t)}
	router, sessionManager := newAuthRouter(t, repo, &stubRegistry{})

	sessionID := loginFor(t, router, "cashier@test.local")
	repo.failGet = true

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sessionID})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestMeSimulation(t *testing.T) {
	router, sessionManager := newAuthRouter(t, &stubUserRepo{user: adminAccount(t)}, &stubRegistry{})
	sessionID := loginFor(t, router, "admin@test.local")

	req := httptest.NewRequest(http.MethodGet, "/me?role=cashier&scope=branch&id=9", nil)
	req.AddCookie(&http.Cookie{Name: sessionManager.CookieName(), Value: sessionID})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		Role         string `json:"role"`
		BranchID     *int64 `json:"branch_id"`
		IsSimulated  bool   `json:"is_simulated"`
		OriginalRole string `json:"original_role"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.IsSimulated || payload.Role != "CASHIER" || payload.OriginalRole != "ADMIN" {
		t.Fatalf("unexpected simulated view: %+v", payload)
	}
	if payload.BranchID == nil || *payload.BranchID != 9 {
		t.Fatalf("expected simulated branch 9, got %v", payload.BranchID)
	}
}

// loginFor performs a login request and returns the issued session ID.
func loginFor(t *testing.T, router chi.Router, email string) string {
	t.Helper()
	body := `{"email":"` + email + `","password":"correctpass"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", res.Code, res.Body.String())
	}
	cookies := res.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("no session cookie issued")
	}
	return cookies[0].Value
}
