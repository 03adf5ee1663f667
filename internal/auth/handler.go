package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/httpx"
	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	audit          *shared.AuditLogger
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, audit *shared.AuditLogger) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		audit:          audit,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/csrf", h.issueCSRF)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) issueCSRF(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payload")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
			return
		}
		h.logger.Error("authenticate", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	httpx.JSON(w, http.StatusOK, principalView(authz.Actual(user.Principal())))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.NoContent(w)
}

// handleMe reports who the caller effectively is on the current URL. For an
// admin carrying simulation parameters the response reflects the simulated
// role and scope, flags the simulation, and names the real role so the UI
// can offer an exit affordance.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	snap := authz.SnapshotFromContext(r.Context())
	switch snap.State {
	case authz.AuthUnknown:
		httpx.Problem(w, http.StatusServiceUnavailable, "Session Unavailable", "session state not yet determined")
		return
	case authz.AuthAnonymous:
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "not logged in")
		return
	}

	effective := authz.Resolve(snap.Principal, r.URL.Query())
	if effective.IsSimulated {
		h.recordSimulation(r, effective)
	}
	httpx.JSON(w, http.StatusOK, principalView(effective))
}

func (h *Handler) recordSimulation(r *http.Request, effective authz.EffectivePrincipal) {
	if h.audit == nil {
		return
	}
	kind, id, _ := effective.Scope()
	err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  effective.Original.ID,
		Action:   "simulation.view",
		Entity:   string(kind),
		EntityID: strconv.FormatInt(id, 10),
		Meta: map[string]any{
			"role": string(effective.Role),
			"path": r.URL.Path,
		},
	})
	if err != nil && h.logger != nil {
		h.logger.Warn("audit simulation", slog.Any("error", err))
	}
}

type principalPayload struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	RoleLabel     string `json:"role_label"`
	BranchID      *int64 `json:"branch_id"`
	WarehouseID   *int64 `json:"warehouse_id"`
	BranchName    string `json:"branch_name,omitempty"`
	WarehouseName string `json:"warehouse_name,omitempty"`
	IsSimulated   bool   `json:"is_simulated"`
	OriginalRole  string `json:"original_role,omitempty"`
}

func principalView(e authz.EffectivePrincipal) principalPayload {
	payload := principalPayload{
		ID:            e.ID,
		Name:          e.Name,
		Role:          string(e.Role),
		RoleLabel:     e.Role.DisplayName(),
		BranchID:      e.BranchID,
		WarehouseID:   e.WarehouseID,
		BranchName:    e.BranchName,
		WarehouseName: e.WarehouseName,
		IsSimulated:   e.IsSimulated,
	}
	if e.IsSimulated {
		payload.OriginalRole = string(e.OriginalRole)
	}
	return payload
}
