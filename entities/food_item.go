package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	ExpirationTypeBestBefore = "best_before"
	ExpirationTypeUseBy      = "use_by"
)

// FoodItem is the single tracked entity: one perishable product with an
// expiration date. ID is generated at creation and is the only identity key;
// ImageURL is a display attribute and must never be used for addressing.
type FoodItem struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ExpirationDate string    `json:"expiration_date"` // ISO-8601 date, YYYY-MM-DD
	ExpirationType string    `json:"expiration_type,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	Amount         float64   `json:"amount"`
	Unit           string    `json:"unit"`     // "g", "kg", "ml", "L", "piece", "sheet", "bottle"
	Category       string    `json:"category"` // "meat", "vegetable", "fish", "seasoning", "snack", "beverage", "other"
	Content        string    `json:"content,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
