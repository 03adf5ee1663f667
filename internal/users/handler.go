package users

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

// Handler wires user administration endpoints. Mounted behind the
// admin-only guard.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.deactivate)
}

type userResponse struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	RoleLabel     string `json:"role_label"`
	BranchID      *int64 `json:"branch_id"`
	WarehouseID   *int64 `json:"warehouse_id"`
	BranchName    string `json:"branch_name,omitempty"`
	WarehouseName string `json:"warehouse_name,omitempty"`
	IsActive      bool   `json:"is_active"`
}

func toResponse(u User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		RoleLabel:     u.Role.DisplayName(),
		BranchID:      u.BranchID,
		WarehouseID:   u.WarehouseID,
		BranchName:    u.BranchName,
		WarehouseName: u.WarehouseName,
		IsActive:      u.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createForm struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role" validate:"required"`
	BranchID    *int64 `json:"branch_id"`
	WarehouseID *int64 `json:"warehouse_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form createForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payload")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, ok := authz.ParseRole(form.Role)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
		return
	}

	user, err := h.service.Create(r.Context(), CreateInput{
		Email:       form.Email,
		Password:    form.Password,
		Name:        form.Name,
		Role:        role,
		BranchID:    form.BranchID,
		WarehouseID: form.WarehouseID,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*user))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*user))
}

type updateForm struct {
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role" validate:"required"`
	BranchID    *int64 `json:"branch_id"`
	WarehouseID *int64 `json:"warehouse_id"`
	IsActive    bool   `json:"is_active"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	var form updateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid payload")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, ok := authz.ParseRole(form.Role)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
		return
	}

	user, err := h.service.Update(r.Context(), id, UpdateInput{
		Name:        form.Name,
		Role:        role,
		BranchID:    form.BranchID,
		WarehouseID: form.WarehouseID,
		IsActive:    form.IsActive,
	})
	if err != nil {
		h.respondLookupError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*user))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.respondLookupError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
		return
	}
	h.logger.Error("users handler", slog.Any("error", err))
	httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
}
