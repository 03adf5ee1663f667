package authz

import (
	"log/slog"
	"net/http"

	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/httpx"
)

// SettingsSource is the guard's view of the settings provider. Cached must
// return synchronously from already-loaded state; Prefetch kicks off a
// background load and returns immediately.
type SettingsSource interface {
	Cached(kind ScopeKind, id int64) *ScopeSettings
	Prefetch(kind ScopeKind, id int64)
}

// Observer receives one event per guard decision.
type Observer interface {
	ObserveDecision(outcome Outcome, simulated bool)
}

// Guard wires the route-guard state machine into the HTTP layer.
type Guard struct {
	Paths     *PathMap
	Settings  SettingsSource
	Logger    *slog.Logger
	Observer  Observer
	LoginPath string
	HomePath  string
}

// NewGuard constructs a Guard with dashboard defaults.
func NewGuard(paths *PathMap, settings SettingsSource, logger *slog.Logger, observer Observer) *Guard {
	return &Guard{
		Paths:     paths,
		Settings:  settings,
		Logger:    logger,
		Observer:  observer,
		LoginPath: "/auth/login",
		HomePath:  "/",
	}
}

type denialPayload struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Reason string `json:"reason"`
	Home   string `json:"home"`
}

// Protect gates the wrapped handler with the full guard evaluation. Exactly
// one terminal response is produced per request; protected content renders
// only on the allowed outcome, with the effective principal placed in
// context for the page.
func (g *Guard) Protect(opts GuardOpts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := SnapshotFromContext(r.Context())
			outcome, effective := Decide(snap, r.URL.Path, r.URL.Query(), g.Paths, opts, g.lookup)

			if g.Observer != nil {
				g.Observer.ObserveDecision(outcome, effective.IsSimulated)
			}

			switch outcome {
			case OutcomeLoading:
				httpx.Problem(w, http.StatusServiceUnavailable, "Session Unavailable", outcome.Reason())
			case OutcomeRedirect:
				http.Redirect(w, r, g.LoginPath, http.StatusSeeOther)
			case OutcomeDeniedPath, OutcomeDeniedRole, OutcomeDeniedPermission:
				g.deny(w, r, outcome, effective, opts)
			case OutcomeAllowed:
				g.prefetch(effective, opts)
				ctx := ContextWithEffective(r.Context(), effective)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

// Require protects a route with a hierarchical role requirement.
func (g *Guard) Require(roles ...Role) func(http.Handler) http.Handler {
	return g.Protect(GuardOpts{AllowedRoles: roles})
}

// RequireFlag protects a route with a feature-flag requirement.
func (g *Guard) RequireFlag(flag Flag) func(http.Handler) http.Handler {
	return g.Protect(GuardOpts{RequiredFlag: flag})
}

func (g *Guard) lookup(e EffectivePrincipal) *ScopeSettings {
	if g.Settings == nil {
		return nil
	}
	kind, id, ok := e.Scope()
	if !ok {
		return nil
	}
	return g.Settings.Cached(kind, id)
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, outcome Outcome, effective EffectivePrincipal, opts GuardOpts) {
	if g.Logger != nil {
		g.Logger.Warn("access denied",
			slog.String("path", r.URL.Path),
			slog.String("reason", outcome.Reason()),
			slog.String("role", string(effective.Role)),
			slog.Bool("simulated", effective.IsSimulated),
		)
	}
	// Denied-permission requests still trigger the settings load so the
	// next navigation can decide with fresh flags.
	if outcome == OutcomeDeniedPermission {
		g.prefetch(effective, opts)
	}
	httpx.JSON(w, http.StatusForbidden, denialPayload{
		Title:  "Access Denied",
		Status: http.StatusForbidden,
		Reason: outcome.Reason(),
		Home:   g.HomePath,
	})
}

func (g *Guard) prefetch(effective EffectivePrincipal, opts GuardOpts) {
	if g.Settings == nil || opts.RequiredFlag == "" {
		return
	}
	kind, id, ok := effective.Scope()
	if !ok {
		return
	}
	if g.Settings.Cached(kind, id) == nil {
		g.Settings.Prefetch(kind, id)
	}
}
