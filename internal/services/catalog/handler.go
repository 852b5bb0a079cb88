package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lovemenu/internal/api"
	"lovemenu/internal/logger"
	"lovemenu/internal/models"
)

// Handler handles HTTP requests for the dish catalog
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Routes mounts the dish endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.ListDishes)
	r.Post("/", h.CreateDish)
	r.Get("/{id}", h.GetDish)
	r.Put("/{id}", h.UpdateDish)
	r.Delete("/{id}", h.DeleteDish)
}

// ListDishes handles GET /api/dishes?category=&available_only=
func (h *Handler) ListDishes(w http.ResponseWriter, r *http.Request) {
	filter := models.DishFilter{
		Category:      r.URL.Query().Get("category"),
		AvailableOnly: true,
	}
	if raw := r.URL.Query().Get("available_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			api.WriteError(w, r, h.logger, &models.ValidationError{
				Field:   "available_only",
				Message: "must be a boolean",
			})
			return
		}
		filter.AvailableOnly = v
	}

	dishes, err := h.service.ListDishes(r.Context(), filter)
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, dishes)
}

// GetDish handles GET /api/dishes/{id}
func (h *Handler) GetDish(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}

	d, err := h.service.GetDish(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}

// CreateDish handles POST /api/dishes
func (h *Handler) CreateDish(w http.ResponseWriter, r *http.Request) {
	var req models.DishCreate
	if err := api.DecodeJSON(w, r, &req); err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}

	d, err := h.service.CreateDish(r.Context(), req)
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, d)
}

// UpdateDish handles PUT /api/dishes/{id}
func (h *Handler) UpdateDish(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}

	var req models.DishUpdate
	if err := api.DecodeJSON(w, r, &req); err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}

	d, err := h.service.UpdateDish(r.Context(), id, req)
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}

// DeleteDish handles DELETE /api/dishes/{id}
func (h *Handler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteDish(r.Context(), id); err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
