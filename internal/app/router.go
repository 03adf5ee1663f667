package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ZubairAhmed90/multipos-sub002/internal/auth"
	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/inventory"
	"github.com/ZubairAhmed90/multipos-sub002/internal/masterdata"
	"github.com/ZubairAhmed90/multipos-sub002/internal/observability"
	"github.com/ZubairAhmed90/multipos-sub002/internal/sales"
	"github.com/ZubairAhmed90/multipos-sub002/internal/settings"
	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
	"github.com/ZubairAhmed90/multipos-sub002/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	CSRFManager       *shared.CSRFManager
	UserService       *users.Service
	Guard             *authz.Guard
	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	SettingsHandler   *settings.Handler
	MasterDataHandler *masterdata.Handler
	SalesHandler      *sales.Handler
	InventoryHandler  *inventory.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Multipos defaults. Every /api
// group sits behind the route guard; the path accessibility map carries the
// per-section role policy and per-group options add role and flag
// requirements on top.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(auth.Identity(params.Logger, params.UserService))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	guard := params.Guard
	r.Route("/api", func(api chi.Router) {
		api.Group(func(g chi.Router) {
			g.Use(guard.Protect(authz.GuardOpts{}))
			g.Route("/sales", params.SalesHandler.MountRoutes)
			g.Route("/returns", params.SalesHandler.MountReturnRoutes)
			g.Route("/inventory", params.InventoryHandler.MountRoutes)
			g.Route("/branches", params.MasterDataHandler.MountBranchRoutes)
			g.Route("/warehouses", params.MasterDataHandler.MountWarehouseRoutes)
		})

		// Admin-only surfaces. Strict matching means a simulated admin is
		// denied here; only the real role passes.
		api.Group(func(g chi.Router) {
			g.Use(guard.Protect(authz.GuardOpts{AllowedRoles: []authz.Role{authz.RoleAdmin}, StrictRoles: true}))
			g.Route("/users", params.UsersHandler.MountRoutes)
			g.Route("/settings", params.SettingsHandler.MountRoutes)
		})
	})

	return r
}
