package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"FreshKeeper/domain"
	"FreshKeeper/pkg/analysis"
	"FreshKeeper/pkg/food"
	"FreshKeeper/pkg/inventory"
	"FreshKeeper/pkg/kvstore"
	"FreshKeeper/pkg/selection"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubS3 struct{}

func (stubS3) UploadFile(fileName string, file *multipart.FileHeader, folder string, allowedTypes ...string) (string, error) {
	return folder + "/" + fileName, nil
}
func (stubS3) UpdateFile(objectKey string, file *multipart.FileHeader, allowedTypes ...string) (string, error) {
	return objectKey, nil
}
func (stubS3) DeleteFile(objectKey string) error        { return nil }
func (stubS3) GetPublicLinkKey(objectKey string) string { return "https://cdn.test/" + objectKey }
func (stubS3) GetObjectKeyFromLink(link string) string {
	return strings.TrimPrefix(link, "https://cdn.test/")
}

func newTestApp(t *testing.T, backendURL string) *fiber.App {
	t.Helper()

	kv := kvstore.NewMemoryStore()
	items := inventory.NewStore(kv)
	sel := selection.NewStore(kv, items)
	gateway := analysis.NewGateway(backendURL)
	service := food.NewFoodService(items, sel, gateway, stubS3{}, validator.New())
	require.NoError(t, service.Load(context.Background()))

	app := fiber.New()
	foodHandler := NewFoodHandler(service, validator.New())
	selectionHandler := NewSelectionHandler(service, validator.New())

	group := app.Group("/api/v1/food-items")
	group.Get("/dashboard", foodHandler.GetDashboardStats)
	group.Get("/export", foodHandler.ExportItems)
	group.Post("/import", foodHandler.ImportItems)
	group.Post("", foodHandler.AddFoodItem)
	group.Get("", foodHandler.GetFoodItems)
	group.Delete("", foodHandler.ClearFoodItems)
	group.Get("/:id", foodHandler.GetFoodItemDetails)
	group.Patch("/:id", foodHandler.UpdateFoodItem)
	group.Delete("/:id", foodHandler.DeleteFoodItem)

	selGroup := app.Group("/api/v1/selection")
	selGroup.Get("", selectionHandler.GetSelectedItems)
	selGroup.Post("/toggle", selectionHandler.ToggleSelection)
	selGroup.Post("/suggest-menu", selectionHandler.SuggestMenu)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestAddAndListFoodItems(t *testing.T) {
	app := newTestApp(t, "http://backend.invalid")

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/food-items", domain.AddFoodItemRequest{
		Name:           "Carrot",
		ExpirationDate: futureDate(5),
		Amount:         300,
		Unit:           "g",
		Category:       "vegetable",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", body["status"])

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/v1/food-items", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"])
}

func TestAddFoodItemValidation(t *testing.T) {
	app := newTestApp(t, "http://backend.invalid")

	// Missing required fields never reach the store.
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/food-items", map[string]any{"name": "Incomplete"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
}

func TestUpdateNotFoundIs404(t *testing.T) {
	app := newTestApp(t, "http://backend.invalid")

	resp, _ := doJSON(t, app, fiber.MethodPatch, "/api/v1/food-items/2f5f0cbe-3d9f-4d6f-9cb4-5a9289f1a001", map[string]any{"name": "x"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteAndClear(t *testing.T) {
	app := newTestApp(t, "http://backend.invalid")

	_, body := doJSON(t, app, fiber.MethodPost, "/api/v1/food-items", domain.AddFoodItemRequest{
		Name:           "Pork",
		ExpirationDate: futureDate(2),
		Amount:         500,
		Unit:           "g",
		Category:       "meat",
	})
	id := body["data"].(map[string]any)["id"].(string)

	resp, _ := doJSON(t, app, fiber.MethodDelete, "/api/v1/food-items/"+id, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/food-items/"+id, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodDelete, "/api/v1/food-items", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestImportEndpointSkipsInvalid(t *testing.T) {
	app := newTestApp(t, "http://backend.invalid")

	payload := `[
		{"name":"ok","expiration_date":"2025-01-01","image_url":"u1","amount":1,"unit":"g","category":"vegetable"},
		{"name":"bad"}
	]`
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/food-items/import", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["imported"])
	assert.Equal(t, float64(1), data["skipped"])
}

func TestExportEndpointIsDownloadable(t *testing.T) {
	app := newTestApp(t, "http://backend.invalid")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/food-items/export", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "food-items.json")
}

func TestSuggestMenuEmptySelectionIs400(t *testing.T) {
	app := newTestApp(t, "http://backend.invalid")

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/selection/suggest-menu", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSuggestMenuBackendErrorIs502(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "model unavailable"})
	}))
	defer backend.Close()

	app := newTestApp(t, backend.URL)

	_, body := doJSON(t, app, fiber.MethodPost, "/api/v1/food-items", domain.AddFoodItemRequest{
		Name:           "Carrot",
		ExpirationDate: futureDate(5),
		Amount:         300,
		Unit:           "g",
		Category:       "vegetable",
	})
	id := body["data"].(map[string]any)["id"].(string)

	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/selection/toggle", map[string]string{"id": id})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/selection/suggest-menu", nil)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
