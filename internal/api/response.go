package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"lovemenu/internal/logger"
	"lovemenu/internal/models"
)

// WriteJSON writes v as the JSON response body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// WriteErrorResponse writes an error response in JSON format
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string, details map[string]interface{}) {
	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}
	if len(details) > 0 {
		errorResponse["details"] = details
	}
	WriteJSON(w, statusCode, errorResponse)
}

// WriteError maps err onto the error taxonomy: not found is 404, invalid
// input is 400 and anything else is logged and reported as a 500.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	requestID := logger.RequestID(r.Context())

	var (
		notFound    *models.NotFoundError
		unavailable *models.UnavailableDishesError
		validation  *models.ValidationError
	)

	switch {
	case errors.As(err, &notFound):
		details := map[string]interface{}{"resource": notFound.Resource}
		if notFound.Resource == models.ResourceDish {
			details["missing_dish_ids"] = notFound.IDs
		} else {
			details["ids"] = notFound.IDs
		}
		WriteErrorResponse(w, http.StatusNotFound, notFound.Error(), requestID, details)
	case errors.Is(err, models.ErrNotFound):
		WriteErrorResponse(w, http.StatusNotFound, err.Error(), requestID, nil)
	case errors.As(err, &unavailable):
		WriteErrorResponse(w, http.StatusBadRequest, unavailable.Error(), requestID,
			map[string]interface{}{"unavailable_dishes": unavailable.Names})
	case errors.As(err, &validation):
		WriteErrorResponse(w, http.StatusBadRequest, validation.Error(), requestID,
			map[string]interface{}{"field": validation.Field})
	case errors.Is(err, models.ErrInvalidRequest):
		WriteErrorResponse(w, http.StatusBadRequest, err.Error(), requestID, nil)
	default:
		log.Error("request_failed", "Unhandled error", requestID, err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID, nil)
	}
}
