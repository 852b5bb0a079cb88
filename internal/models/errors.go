package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors the HTTP layer maps to status codes
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Resource names carried by NotFoundError
const (
	ResourceDish  = "dish"
	ResourceOrder = "order"
)

// NotFoundError reports one or more missing records of the same resource
type NotFoundError struct {
	Resource string
	IDs      []int64
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 1 {
		return fmt.Sprintf("%s %d not found", e.Resource, e.IDs[0])
	}
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, strings.Join(ids, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError describes a single invalid request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// UnavailableDishesError is returned when an order references dishes that
// exist but are switched off in the menu.
type UnavailableDishesError struct {
	Names []string
}

func (e *UnavailableDishesError) Error() string {
	return "dishes unavailable: " + strings.Join(e.Names, ", ")
}

func (e *UnavailableDishesError) Is(target error) bool {
	return target == ErrInvalidRequest
}
