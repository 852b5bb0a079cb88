package models

import (
	"encoding/json"
	"strings"
)

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

// Dish represents a menu item
type Dish struct {
	ID          int64    `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Category    string   `json:"category" db:"category"`
	ImageURL    *string  `json:"image_url" db:"image_url"`
	Tags        []string `json:"tags" db:"tags"`
	Rating      int      `json:"rating" db:"rating"`
	IsAvailable bool     `json:"is_available" db:"is_available"`
}

// DishCreate is the body of POST /api/dishes
type DishCreate struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	ImageURL    *string  `json:"image_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
	IsAvailable *bool    `json:"is_available,omitempty"`
}

// DishUpdate is the body of PUT /api/dishes/{id}; nil fields are left
// untouched. ImageURL also distinguishes an explicit null, which clears it.
type DishUpdate struct {
	Name        *string        `json:"name,omitempty"`
	Category    *string        `json:"category,omitempty"`
	ImageURL    NullableString `json:"image_url"`
	Tags        *[]string      `json:"tags,omitempty"`
	Rating      *int           `json:"rating,omitempty"`
	IsAvailable *bool          `json:"is_available,omitempty"`
}

// DishFilter narrows a dish listing
type DishFilter struct {
	Category      string
	AvailableOnly bool
}

// Validate validates the create dish request
func (req *DishCreate) Validate() error {
	if err := validateDishName(req.Name); err != nil {
		return err
	}
	if err := validateCategory(req.Category); err != nil {
		return err
	}
	if req.Rating != nil {
		if err := validateRating(*req.Rating); err != nil {
			return err
		}
	}
	return nil
}

// ToDish fills in defaults for the fields the caller left out
func (req *DishCreate) ToDish() Dish {
	d := Dish{
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		ImageURL:    req.ImageURL,
		Tags:        req.Tags,
		Rating:      DefaultRating,
		IsAvailable: true,
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if req.Rating != nil {
		d.Rating = *req.Rating
	}
	if req.IsAvailable != nil {
		d.IsAvailable = *req.IsAvailable
	}
	return d
}

// Validate validates the fields present in the update
func (req *DishUpdate) Validate() error {
	if req.Name != nil {
		if err := validateDishName(*req.Name); err != nil {
			return err
		}
	}
	if req.Category != nil {
		if err := validateCategory(*req.Category); err != nil {
			return err
		}
	}
	if req.Rating != nil {
		if err := validateRating(*req.Rating); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the provided fields onto d
func (req *DishUpdate) Apply(d *Dish) {
	if req.Name != nil {
		d.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		d.Category = strings.TrimSpace(*req.Category)
	}
	if req.ImageURL.Set {
		d.ImageURL = req.ImageURL.Value
	}
	if req.Tags != nil {
		d.Tags = *req.Tags
		if d.Tags == nil {
			d.Tags = []string{}
		}
	}
	if req.Rating != nil {
		d.Rating = *req.Rating
	}
	if req.IsAvailable != nil {
		d.IsAvailable = *req.IsAvailable
	}
}

func validateDishName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > 200 {
		return &ValidationError{Field: "name", Message: "name must not exceed 200 characters"}
	}
	return nil
}

func validateCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return &ValidationError{Field: "category", Message: "category is required"}
	}
	if len(category) > 100 {
		return &ValidationError{Field: "category", Message: "category must not exceed 100 characters"}
	}
	return nil
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return &ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}
	return nil
}

// NullableString is a JSON string field that remembers whether its key was
// present. Set with a nil Value means the key was an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

// NewNullableString returns a present, non-null value
func NewNullableString(v string) NullableString {
	return NullableString{Set: true, Value: &v}
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return &ValidationError{Field: "image_url", Message: "expected string or null"}
	}
	n.Value = &v
	return nil
}

func (n NullableString) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}
