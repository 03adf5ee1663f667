package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/httpx"
	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
)

// Handler serves the dashboard's sales endpoints. Every route is mounted
// behind the route guard, so the effective principal is always in context.
type Handler struct {
	logger    *slog.Logger
	repo      Repository
	settings  authz.SettingsSource
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, repo Repository, settings authz.SettingsSource) *Handler {
	return &Handler{logger: logger, repo: repo, settings: settings, validator: validator.New()}
}

// MountRoutes registers sales routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{id}", h.remove)
}

// MountReturnRoutes registers sales-return routes.
func (h *Handler) MountReturnRoutes(r chi.Router) {
	r.Get("/", h.listReturns)
}

// scopeFilter derives the query scope from the effective principal: a
// branch-bound principal (real or simulated) only ever sees its branch.
func scopeFilter(e authz.EffectivePrincipal) ListFilter {
	return ListFilter{BranchID: e.BranchID}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	effective, ok := authz.EffectiveFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing authorization context")
		return
	}
	sales, err := h.repo.List(r.Context(), scopeFilter(effective))
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, sales)
}

type createForm struct {
	CustomerID *int64  `json:"customer_id"`
	Number     string  `json:"number" validate:"required"`
	Total      float64 `json:"total" validate:"required,gt=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	effective, ok := authz.EffectiveFromContext(r.Context())
	if !ok || !authz.CanPerformAction(effective, authz.ActionCreate, authz.ResourceSales) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not allowed to create sales")
		return
	}
	if effective.BranchID == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "sales are posted against a branch scope")
		return
	}

	var form createForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payload")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	sale, err := h.repo.Create(r.Context(), Sale{
		BranchID:   *effective.BranchID,
		CustomerID: form.CustomerID,
		Number:     form.Number,
		Total:      form.Total,
		CreatedBy:  effective.ID,
	})
	if err != nil {
		h.logger.Error("create sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	effective, ok := authz.EffectiveFromContext(r.Context())
	if !ok || !authz.CanPerformAction(effective, authz.ActionDelete, authz.ResourceSales) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not allowed to delete sales")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "sale not found")
			return
		}
		h.logger.Error("delete sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) listReturns(w http.ResponseWriter, r *http.Request) {
	effective, ok := authz.EffectiveFromContext(r.Context())
	if !ok || !authz.CanPerformAction(effective, authz.ActionRead, authz.ResourceReturns) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not allowed to view returns")
		return
	}
	// Cashiers additionally need the branch flag that opens the returns
	// page for them.
	if effective.Role == authz.RoleCashier && !authz.HasPermission(effective, authz.FlagReturnsByCashier, h.cached(effective)) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "returns are not enabled for this branch")
		return
	}
	returns, err := h.repo.ListReturns(r.Context(), scopeFilter(effective))
	if err != nil {
		h.logger.Error("list returns", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, returns)
}

func (h *Handler) cached(effective authz.EffectivePrincipal) *authz.ScopeSettings {
	if h.settings == nil {
		return nil
	}
	kind, id, ok := effective.Scope()
	if !ok {
		return nil
	}
	loaded := h.settings.Cached(kind, id)
	if loaded == nil {
		h.settings.Prefetch(kind, id)
	}
	return loaded
}
