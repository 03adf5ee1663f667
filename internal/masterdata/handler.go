package masterdata

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/httpx"
	"github.com/ZubairAhmed90/multipos-sub002/internal/shared"
)

// Handler serves location master data reads.
type Handler struct {
	logger *slog.Logger
	repo   Repository
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountBranchRoutes registers branch routes on the provided router.
func (h *Handler) MountBranchRoutes(r chi.Router) {
	r.Get("/", h.listBranches)
	r.Get("/{id}", h.getBranch)
}

// MountWarehouseRoutes registers warehouse routes on the provided router.
func (h *Handler) MountWarehouseRoutes(r chi.Router) {
	r.Get("/", h.listWarehouses)
	r.Get("/{id}", h.getWarehouse)
}

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.repo.ListBranches(r.Context())
	if err != nil {
		h.logger.Error("list branches", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, branches)
}

func (h *Handler) getBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	branch, err := h.repo.GetBranch(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, "branch")
		return
	}
	httpx.JSON(w, http.StatusOK, branch)
}

func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.repo.ListWarehouses(r.Context())
	if err != nil {
		h.logger.Error("list warehouses", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, warehouses)
}

func (h *Handler) getWarehouse(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	warehouse, err := h.repo.GetWarehouse(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err, "warehouse")
		return
	}
	httpx.JSON(w, http.StatusOK, warehouse)
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error, entity string) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", entity+" not found")
		return
	}
	h.logger.Error("masterdata handler", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}
