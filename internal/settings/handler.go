package settings

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
	"github.com/ZubairAhmed90/multipos-sub002/internal/platform/httpx"
)

// Handler exposes scope settings administration. Routes are mounted behind
// the admin-only guard in the router.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers settings routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{kind}/{id}", h.getScope)
	r.Put("/{kind}/{id}/flags/{name}", h.putFlag)
}

type scopeResponse struct {
	Kind  string              `json:"kind"`
	ID    int64               `json:"id"`
	Flags map[authz.Flag]bool `json:"flags"`
}

func (h *Handler) getScope(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.scopeParams(w, r)
	if !ok {
		return
	}
	loaded, err := h.service.Load(r.Context(), kind, id)
	if err != nil {
		h.logger.Error("load scope settings", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, scopeResponse{Kind: string(kind), ID: id, Flags: loaded.Flags})
}

type putFlagForm struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (h *Handler) putFlag(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := h.scopeParams(w, r)
	if !ok {
		return
	}
	name := authz.Flag(chi.URLParam(r, "name"))
	if !IsKnownFlag(name) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown flag")
		return
	}

	var form putFlagForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payload")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.SetFlag(r.Context(), kind, id, name, *form.Enabled); err != nil {
		h.logger.Error("set scope flag", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) scopeParams(w http.ResponseWriter, r *http.Request) (authz.ScopeKind, int64, bool) {
	kind, err := ParseScopeKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "scope kind must be branch or warehouse")
		return "", 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "scope id must be a positive integer")
		return "", 0, false
	}
	return kind, id, true
}
