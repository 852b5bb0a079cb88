package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lovemenu/internal/models"
)

const maxBodyBytes = 1 << 20

// DecodeJSON decodes a JSON request body into v, rejecting unknown fields and
// anything that is not application/json.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return &models.ValidationError{Field: "Content-Type", Message: "Content-Type must be application/json"}
	}

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			return vErr
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &models.ValidationError{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("expected %s", typeErr.Type.String()),
			}
		}
		return &models.ValidationError{Field: "body", Message: "invalid JSON format: " + err.Error()}
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &models.ValidationError{Field: "body", Message: "body must contain a single JSON object"}
	}
	return nil
}

// IDParam parses a positive integer route parameter
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}
