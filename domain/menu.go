package domain

import "errors"

var (
	MessageSuccessToggleSelection = "selection updated successfully"
	MessageSuccessGetSelection    = "selected items retrieved successfully"
	MessageSuccessClearSelection  = "selection cleared successfully"
	MessageSuccessSuggestMenu     = "menu suggested successfully"

	MessageFailedToggleSelection = "failed to update selection"
	MessageFailedGetSelection    = "failed to retrieve selected items"
	MessageFailedClearSelection  = "failed to clear selection"
	MessageFailedSuggestMenu     = "failed to suggest menu"

	ErrNoItemsSelected = errors.New("no items selected for menu suggestion")
)

type (
	ToggleSelectionRequest struct {
		ID string `json:"id" validate:"required,uuid"`
	}

	SelectionResponse struct {
		Items []FoodItemResponse `json:"items"`
		Total int                `json:"total"`
	}

	// FoodItemGuess is the structured best-effort result of a photo
	// analysis. It is returned to the caller for confirmation and only
	// becomes a stored item through an explicit add.
	FoodItemGuess struct {
		Name           string  `json:"name"`
		ExpirationDate string  `json:"expiration_date"`
		ImageURL       string  `json:"image_url,omitempty"`
		Amount         float64 `json:"amount"`
		Unit           string  `json:"unit"`
		Category       string  `json:"category"`
	}

	MenuSuggestion struct {
		Menu        string   `json:"menu"`
		Ingredients []string `json:"ingredients"`
		Reason      string   `json:"reason"`
	}

	MenuSuggestionResponse struct {
		Menu        string             `json:"menu"`
		Ingredients []string           `json:"ingredients"`
		Reason      string             `json:"reason"`
		UsedItems   []FoodItemResponse `json:"used_items"`
	}
)
