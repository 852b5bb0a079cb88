package order

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lovemenu/internal/api"
	"lovemenu/internal/logger"
	"lovemenu/internal/models"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Routes mounts the order endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.CreateOrder)
	r.Get("/", h.History)
	r.Get("/active", h.ActiveOrder)
	r.Get("/{id}", h.GetOrder)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// CreateOrder handles POST /api/orders requests
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	h.logger.Debug("order_received", "Received order creation request", requestID, map[string]interface{}{
		"content_length": r.ContentLength,
		"remote_addr":    r.RemoteAddr,
	})

	var req models.CreateOrderRequest
	if err := api.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debug("validation_failed", "Failed to parse request body", requestID, map[string]interface{}{
			"reason": err.Error(),
		})
		api.WriteError(w, r, h.logger, err)
		return
	}

	o, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, o)
}

// History handles GET /api/orders?limit=N
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			api.WriteError(w, r, h.logger, &models.ValidationError{
				Field:   "limit",
				Message: "limit must be a non-negative integer",
			})
			return
		}
		if n == 0 {
			api.WriteJSON(w, http.StatusOK, []models.Order{})
			return
		}
		limit = n
	}

	orders, err := h.service.History(r.Context(), limit)
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, orders)
}

// ActiveOrder handles GET /api/orders/active
func (h *Handler) ActiveOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.ActiveOrder(r.Context())
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, o)
}

// GetOrder handles GET /api/orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}

	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, o)
}

// UpdateStatus handles PATCH /api/orders/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := api.IDParam(r, "id")
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}

	var req models.UpdateStatusRequest
	if err := api.DecodeJSON(w, r, &req); err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}

	status, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		api.WriteError(w, r, h.logger, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, o)
}
