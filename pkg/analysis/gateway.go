package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"FreshKeeper/domain"
	"FreshKeeper/entities"
)

// BackendError is a non-2xx answer from the analysis backend. It is always
// recoverable: callers surface it to the user and leave store state alone.
type BackendError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Details    string `json:"details,omitempty"`
}

func (e *BackendError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("backend error (%d): %s - %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("backend error (%d): %s", e.StatusCode, e.Message)
}

type (
	// Gateway is the client for the external analysis backend: photo to
	// structured food item guess, ingredient list to menu suggestion.
	Gateway interface {
		AnalyzeImage(ctx context.Context, filename string, image []byte, contentType string) (domain.FoodItemGuess, error)
		AnalyzeImageBase64(ctx context.Context, image []byte, contentType string) (domain.FoodItemGuess, error)
		SuggestMenu(ctx context.Context, items []entities.FoodItem) (domain.MenuSuggestion, error)
	}

	gateway struct {
		baseURL string
		client  *http.Client
	}
)

func NewGateway(baseURL string) Gateway {
	return &gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *gateway) AnalyzeImage(ctx context.Context, filename string, image []byte, contentType string) (domain.FoodItemGuess, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return domain.FoodItemGuess{}, err
	}
	if _, err = part.Write(image); err != nil {
		return domain.FoodItemGuess{}, err
	}
	if err = writer.Close(); err != nil {
		return domain.FoodItemGuess{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/analyze", body)
	if err != nil {
		return domain.FoodItemGuess{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return g.doAnalyze(req)
}

func (g *gateway) AnalyzeImageBase64(ctx context.Context, image []byte, contentType string) (domain.FoodItemGuess, error) {
	payload := map[string]string{
		"image_base64": encodeBase64(image),
		"content_type": contentType,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return domain.FoodItemGuess{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/analyze", bytes.NewBuffer(raw))
	if err != nil {
		return domain.FoodItemGuess{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	return g.doAnalyze(req)
}

func (g *gateway) doAnalyze(req *http.Request) (domain.FoodItemGuess, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return domain.FoodItemGuess{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return domain.FoodItemGuess{}, err
	}

	// The backend is not strict about the amount field: it may arrive as a
	// number or as a string like "300g" with the unit glued on.
	var wire struct {
		Name           string          `json:"name"`
		ExpirationDate string          `json:"expiration_date"`
		ImageURL       string          `json:"image_url"`
		Amount         json.RawMessage `json:"amount"`
		Unit           string          `json:"unit"`
		Category       string          `json:"category"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return domain.FoodItemGuess{}, err
	}

	guess := domain.FoodItemGuess{
		Name:           wire.Name,
		ExpirationDate: wire.ExpirationDate,
		ImageURL:       wire.ImageURL,
		Unit:           wire.Unit,
		Category:       wire.Category,
	}
	guess.Amount, guess.Unit = parseAmount(wire.Amount, wire.Unit)

	return guess, nil
}

func (g *gateway) SuggestMenu(ctx context.Context, items []entities.FoodItem) (domain.MenuSuggestion, error) {
	if len(items) == 0 {
		return domain.MenuSuggestion{}, domain.ErrNoItemsSelected
	}

	raw, err := json.Marshal(map[string]any{"products": items})
	if err != nil {
		return domain.MenuSuggestion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/suggest-menu", bytes.NewBuffer(raw))
	if err != nil {
		return domain.MenuSuggestion{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.MenuSuggestion{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return domain.MenuSuggestion{}, err
	}

	var suggestion domain.MenuSuggestion
	if err := json.NewDecoder(resp.Body).Decode(&suggestion); err != nil {
		return domain.MenuSuggestion{}, err
	}
	return suggestion, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	backendErr := &BackendError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, backendErr); err != nil || backendErr.Message == "" {
		backendErr.Message = resp.Status
		backendErr.Details = strings.TrimSpace(string(raw))
	}
	return backendErr
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// parseAmount accepts 300, "300", or "300g"; a unit suffix only wins when the
// backend left the unit field empty.
func parseAmount(raw json.RawMessage, unit string) (float64, string) {
	if len(raw) == 0 {
		return 0, unit
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, unit
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, unit
	}

	text = strings.TrimSpace(text)
	split := len(text)
	for i, r := range text {
		if (r < '0' || r > '9') && r != '.' && r != '-' {
			split = i
			break
		}
	}

	number, err := strconv.ParseFloat(text[:split], 64)
	if err != nil {
		return 0, unit
	}

	if suffix := strings.TrimSpace(text[split:]); suffix != "" && unit == "" {
		unit = suffix
	}
	return number, unit
}
