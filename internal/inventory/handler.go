package inventory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/httpx"
)

// Handler serves the dashboard's inventory endpoints.
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

// MountRoutes registers inventory routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listStock)
	r.Post("/adjustments", h.adjust)
}

func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	effective, ok := authz.EffectiveFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing authorization context")
		return
	}
	levels, err := h.repo.ListStock(r.Context(), ListFilter{WarehouseID: effective.WarehouseID})
	if err != nil {
		h.logger.Error("list stock", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, levels)
}

type adjustForm struct {
	WarehouseID *int64  `json:"warehouse_id" validate:"omitempty,gt=0"`
	ProductID   int64   `json:"product_id" validate:"required,gt=0"`
	Qty         float64 `json:"qty" validate:"required"`
	Note        string  `json:"note" validate:"required"`
}

// adjust accepts a manual stock correction. Warehouse keepers pass through
// the static action table; a cashier needs the branch flag that permits
// inventory edits from the sales floor.
func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	effective, ok := authz.EffectiveFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing authorization context")
		return
	}
	if !h.canAdjust(effective) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "not allowed to adjust inventory")
		return
	}

	var form adjustForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payload")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	// A warehouse-bound principal always posts into its own warehouse;
	// anyone else must name the target explicitly.
	warehouseID := effective.WarehouseID
	if warehouseID == nil {
		warehouseID = form.WarehouseID
	}
	if warehouseID == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "warehouse_id required")
		return
	}

	adj, err := h.repo.RecordAdjustment(r.Context(), Adjustment{
		WarehouseID: *warehouseID,
		ProductID:   form.ProductID,
		Qty:         form.Qty,
		Note:        form.Note,
		CreatedBy:   effective.ID,
	})
	if err != nil {
		h.logger.Error("record adjustment", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, adj)
}

func (h *Handler) canAdjust(effective authz.EffectivePrincipal) bool {
	if authz.CanPerformAction(effective, authz.ActionUpdate, authz.ResourceInventory) {
		if effective.Role == authz.RoleWarehouseKeeper {
			return authz.HasPermission(effective, authz.FlagWarehouseInventoryEdit, h.cached(effective))
		}
		return true
	}
	if effective.Role == authz.RoleCashier {
		return authz.HasPermission(effective, authz.FlagCashierInventoryEdit, h.cached(effective))
	}
	return false
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
		// Fire the load so a retry can succeed; this request still fails
		// closed.
		h.settings.Prefetch(kind, id)
	}
	return loaded
}
