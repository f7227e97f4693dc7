package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessAddFoodItem       = "food item added successfully"
	MessageSuccessUpdateFoodItem    = "food item updated successfully"
	MessageSuccessDeleteFoodItem    = "food item deleted successfully"
	MessageSuccessClearFoodItems    = "all food items deleted successfully"
	MessageSuccessGetFoodItems      = "food items retrieved successfully"
	MessageSuccessAnalyzePhoto      = "photo analyzed successfully"
	MessageSuccessImportItems       = "food items imported successfully"
	MessageSuccessExportItems       = "food items exported successfully"
	MessageSuccessSeedItems         = "sample food items added successfully"
	MessageSuccessGetDashboardStats = "dashboard statistics retrieved successfully"
	MessageSuccessSendDigest        = "expiry digest sent successfully"

	MessageFailedAddFoodItem       = "failed to add food item"
	MessageFailedUpdateFoodItem    = "failed to update food item"
	MessageFailedDeleteFoodItem    = "failed to delete food item"
	MessageFailedClearFoodItems    = "failed to delete all food items"
	MessageFailedGetFoodItems      = "failed to retrieve food items"
	MessageFailedAnalyzePhoto      = "failed to analyze photo"
	MessageFailedImportItems       = "failed to import food items"
	MessageFailedExportItems       = "failed to export food items"
	MessageFailedSeedItems         = "failed to add sample food items"
	MessageFailedGetDashboardStats = "failed to retrieve dashboard statistics"
	MessageFailedSendDigest        = "failed to send expiry digest"

	ErrFoodItemNotFound      = errors.New("food item not found")
	ErrInvalidExpirationDate = errors.New("invalid expiration date")
	ErrInvalidAmount         = errors.New("amount must not be negative")
	ErrInvalidExpirationType = errors.New("invalid expiration type")
	ErrInvalidImportPayload  = errors.New("import payload is not a JSON array of food items")
)

type (
	AddFoodItemRequest struct {
		Name           string  `json:"name" validate:"required"`
		ExpirationDate string  `json:"expiration_date" validate:"required"`
		ExpirationType string  `json:"expiration_type" validate:"omitempty,oneof=best_before use_by"`
		ImageURL       string  `json:"image_url"`
		Amount         float64 `json:"amount" validate:"gte=0"`
		Unit           string  `json:"unit" validate:"required"`
		Category       string  `json:"category" validate:"required"`
		Content        string  `json:"content"`
	}

	// UpdateFoodItemRequest carries patch semantics: nil fields leave the
	// stored value untouched.
	UpdateFoodItemRequest struct {
		Name           *string  `json:"name" validate:"omitempty,min=1"`
		ExpirationDate *string  `json:"expiration_date" validate:"omitempty"`
		ExpirationType *string  `json:"expiration_type" validate:"omitempty,oneof=best_before use_by"`
		ImageURL       *string  `json:"image_url"`
		Amount         *float64 `json:"amount" validate:"omitempty,gte=0"`
		Unit           *string  `json:"unit" validate:"omitempty,min=1"`
		Category       *string  `json:"category" validate:"omitempty,min=1"`
		Content        *string  `json:"content"`
	}

	FoodItemResponse struct {
		ID             string    `json:"id"`
		Name           string    `json:"name"`
		ExpirationDate string    `json:"expiration_date"`
		ExpirationType string    `json:"expiration_type"`
		ImageURL       string    `json:"image_url,omitempty"`
		Amount         float64   `json:"amount"`
		Unit           string    `json:"unit"`
		Category       string    `json:"category"`
		Content        string    `json:"content,omitempty"`
		DaysRemaining  *int      `json:"days_remaining"` // nil when the date cannot be parsed
		Status         string    `json:"status"`         // "Safe", "Warning", "Critical", "Expired", "Unknown"
		CreatedAt      time.Time `json:"created_at"`
	}

	// ImportFoodItem mirrors the exported record layout; every field the
	// export writes is required on the way back in.
	ImportFoodItem struct {
		Name           string  `json:"name" validate:"required"`
		ExpirationDate string  `json:"expiration_date" validate:"required"`
		ExpirationType string  `json:"expiration_type" validate:"omitempty,oneof=best_before use_by"`
		ImageURL       string  `json:"image_url"`
		Amount         float64 `json:"amount" validate:"gte=0"`
		Unit           string  `json:"unit" validate:"required"`
		Category       string  `json:"category" validate:"required"`
		Content        string  `json:"content"`
	}

	ImportItemsResponse struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}

	DashboardStatsResponse struct {
		TotalItems    int `json:"total_items"`
		SafeItems     int `json:"safe_items"`
		WarningItems  int `json:"warning_items"`
		CriticalItems int `json:"critical_items"`
		ExpiredItems  int `json:"expired_items"`
		UnknownItems  int `json:"unknown_items"`
		ExpiringSoon  int `json:"expiring_soon"` // within the next 3 days
	}

	SendDigestRequest struct {
		Email      string `json:"email" validate:"required,email"`
		WithinDays int    `json:"within_days" validate:"omitempty,min=1"`
	}
)
