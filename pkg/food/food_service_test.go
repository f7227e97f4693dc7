package food

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"FreshKeeper/domain"
	"FreshKeeper/entities"
	"FreshKeeper/pkg/analysis"
	"FreshKeeper/pkg/expiry"
	"FreshKeeper/pkg/inventory"
	"FreshKeeper/pkg/kvstore"
	"FreshKeeper/pkg/selection"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	uploaded []string
	deleted  []string
}

func (f *fakeS3) UploadFile(fileName string, file *multipart.FileHeader, folder string, allowedTypes ...string) (string, error) {
	key := folder + "/" + fileName
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeS3) UpdateFile(objectKey string, file *multipart.FileHeader, allowedTypes ...string) (string, error) {
	return objectKey, nil
}

func (f *fakeS3) DeleteFile(objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string {
	if !strings.HasPrefix(link, "https://cdn.test/") {
		return ""
	}
	return strings.TrimPrefix(link, "https://cdn.test/")
}

type fakeGateway struct {
	guess      domain.FoodItemGuess
	suggestion domain.MenuSuggestion
	err        error
	gotItems   []entities.FoodItem
}

func (f *fakeGateway) AnalyzeImage(ctx context.Context, filename string, image []byte, contentType string) (domain.FoodItemGuess, error) {
	if f.err != nil {
		return domain.FoodItemGuess{}, f.err
	}
	return f.guess, nil
}

func (f *fakeGateway) AnalyzeImageBase64(ctx context.Context, image []byte, contentType string) (domain.FoodItemGuess, error) {
	if f.err != nil {
		return domain.FoodItemGuess{}, f.err
	}
	return f.guess, nil
}

func (f *fakeGateway) SuggestMenu(ctx context.Context, items []entities.FoodItem) (domain.MenuSuggestion, error) {
	f.gotItems = items
	if f.err != nil {
		return domain.MenuSuggestion{}, f.err
	}
	return f.suggestion, nil
}

type fixture struct {
	service FoodService
	items   inventory.Store
	gateway *fakeGateway
	s3      *fakeS3
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := kvstore.NewMemoryStore()
	items := inventory.NewStore(kv)
	sel := selection.NewStore(kv, items)
	gw := &fakeGateway{}
	s3 := &fakeS3{}
	svc := NewFoodService(items, sel, gw, s3, validator.New())
	require.NoError(t, svc.Load(context.Background()))
	return &fixture{service: svc, items: items, gateway: gw, s3: s3}
}

func addRequest(name, date string) domain.AddFoodItemRequest {
	return domain.AddFoodItemRequest{
		Name:           name,
		ExpirationDate: date,
		Amount:         100,
		Unit:           "g",
		Category:       "vegetable",
	}
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func TestAddFoodItem(t *testing.T) {
	f := newFixture(t)

	res, err := f.service.AddFoodItem(context.Background(), addRequest("Carrot", futureDate(5)))
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "Carrot", res.Name)
	assert.Equal(t, entities.ExpirationTypeBestBefore, res.ExpirationType)
	require.NotNil(t, res.DaysRemaining)
	assert.Equal(t, 5, *res.DaysRemaining)
}

func TestAddFoodItemInvalidDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AddFoodItem(context.Background(), addRequest("Carrot", "soon-ish"))
	assert.ErrorIs(t, err, domain.ErrInvalidExpirationDate)
}

func TestAddFoodItemNegativeAmount(t *testing.T) {
	f := newFixture(t)

	req := addRequest("Carrot", futureDate(5))
	req.Amount = -1
	_, err := f.service.AddFoodItem(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestUpdateFoodItemPatchMerge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	added, err := f.service.AddFoodItem(ctx, addRequest("Carrot", futureDate(5)))
	require.NoError(t, err)

	amount := 250.0
	require.NoError(t, f.service.UpdateFoodItem(ctx, added.ID, domain.UpdateFoodItemRequest{Amount: &amount}))

	got, err := f.service.GetFoodItemByID(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.Amount)
	assert.Equal(t, "Carrot", got.Name)
	assert.Equal(t, added.ExpirationDate, got.ExpirationDate)
}

func TestUpdateFoodItemNotFound(t *testing.T) {
	f := newFixture(t)

	name := "x"
	err := f.service.UpdateFoodItem(context.Background(), "2f5f0cbe-3d9f-4d6f-9cb4-5a9289f1a001", domain.UpdateFoodItemRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrFoodItemNotFound)
}

func TestDeleteFoodItemCleansUpPhotoAndSelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := addRequest("Carrot", futureDate(5))
	req.ImageURL = "https://cdn.test/food-photos/abc"
	added, err := f.service.AddFoodItem(ctx, req)
	require.NoError(t, err)

	require.NoError(t, f.service.ToggleSelection(ctx, added.ID))
	require.NoError(t, f.service.DeleteFoodItem(ctx, added.ID))

	assert.Contains(t, f.s3.deleted, "food-photos/abc")

	sel, err := f.service.GetSelectedItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, sel.Total)

	_, err = f.service.GetFoodItemByID(ctx, added.ID)
	assert.ErrorIs(t, err, domain.ErrFoodItemNotFound)
}

func TestGetFoodItemsFilterAndSort(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	late := addRequest("Late", futureDate(20))
	soon := addRequest("Soon", futureDate(2))
	other := addRequest("Kg", futureDate(10))
	other.Unit = "kg"

	for _, req := range []domain.AddFoodItemRequest{late, soon, other} {
		_, err := f.service.AddFoodItem(ctx, req)
		require.NoError(t, err)
	}

	items, err := f.service.GetFoodItems(ctx, expiry.Predicate{Unit: "g"}, expiry.SortExpiringFirst)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Soon", items[0].Name)
	assert.Equal(t, "Late", items[1].Name)
}

func TestImportSkipsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	payload := `[
		{"name":"ok","expiration_date":"2025-01-01","image_url":"u1","amount":1,"unit":"g","category":"vegetable"},
		{"name":"bad"}
	]`

	res, err := f.service.ImportItems(ctx, []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)

	items := f.items.All()
	require.Len(t, items, 1)
	assert.Equal(t, "ok", items[0].Name)
}

func TestImportRejectsNonArrayPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ImportItems(context.Background(), []byte(`{"name":"ok"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidImportPayload)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.AddFoodItem(ctx, addRequest("Carrot", futureDate(5)))
	require.NoError(t, err)
	_, err = f.service.AddFoodItem(ctx, addRequest("Pork", futureDate(2)))
	require.NoError(t, err)

	data, err := f.service.ExportItems(ctx)
	require.NoError(t, err)

	var exported []entities.FoodItem
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, 2)

	fresh := newFixture(t)
	res, err := fresh.service.ImportItems(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Zero(t, res.Skipped)

	items := fresh.items.All()
	assert.Equal(t, "Carrot", items[0].Name)
	assert.Equal(t, "Pork", items[1].Name)
}

func TestSeedSampleItems(t *testing.T) {
	f := newFixture(t)

	seeded, err := f.service.SeedSampleItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, seeded, 3)
	assert.Len(t, f.items.All(), 3)
}

func TestSuggestMenuRequiresSelection(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.SuggestMenu(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoItemsSelected)
}

func TestSuggestMenuUsesSelectedItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gateway.suggestion = domain.MenuSuggestion{
		Menu:        "Carrot soup",
		Ingredients: []string{"Carrot"},
		Reason:      "expiring first",
	}

	added, err := f.service.AddFoodItem(ctx, addRequest("Carrot", futureDate(2)))
	require.NoError(t, err)
	_, err = f.service.AddFoodItem(ctx, addRequest("Pork", futureDate(9)))
	require.NoError(t, err)

	require.NoError(t, f.service.ToggleSelection(ctx, added.ID))

	res, err := f.service.SuggestMenu(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Carrot soup", res.Menu)
	require.Len(t, f.gateway.gotItems, 1)
	assert.Equal(t, "Carrot", f.gateway.gotItems[0].Name)
	require.Len(t, res.UsedItems, 1)
	assert.Equal(t, "Carrot", res.UsedItems[0].Name)
}

func TestToggleSelectionUnknownItem(t *testing.T) {
	f := newFixture(t)

	err := f.service.ToggleSelection(context.Background(), "2f5f0cbe-3d9f-4d6f-9cb4-5a9289f1a001")
	assert.ErrorIs(t, err, domain.ErrFoodItemNotFound)
}

func TestGetDashboardStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, req := range []domain.AddFoodItemRequest{
		addRequest("Expired", futureDate(-2)),
		addRequest("Soon", futureDate(2)),
		addRequest("Later", futureDate(30)),
	} {
		_, err := f.service.AddFoodItem(ctx, req)
		require.NoError(t, err)
	}

	stats, err := f.service.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 1, stats.ExpiredItems)
	assert.Equal(t, 1, stats.SafeItems)
	assert.Equal(t, 1, stats.CriticalItems)
	assert.Equal(t, 1, stats.ExpiringSoon)
	assert.Zero(t, stats.UnknownItems)
}

func multipartPhoto(t *testing.T) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", "carrot.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["photo"][0]
}

func TestAnalyzePhoto(t *testing.T) {
	f := newFixture(t)
	f.gateway.guess = domain.FoodItemGuess{
		Name:           "Carrot",
		ExpirationDate: futureDate(6),
		Amount:         300,
		Unit:           "g",
		Category:       "vegetable",
	}

	guess, err := f.service.AnalyzePhoto(context.Background(), multipartPhoto(t))
	require.NoError(t, err)

	assert.Equal(t, "Carrot", guess.Name)
	require.Len(t, f.s3.uploaded, 1)
	// The stored copy wins over any URL the backend echoed.
	assert.Equal(t, "https://cdn.test/"+f.s3.uploaded[0], guess.ImageURL)
}

func TestAnalyzePhotoBackendFailureCleansUpUpload(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = &analysis.BackendError{StatusCode: 500, Message: "backend down"}

	_, err := f.service.AnalyzePhoto(context.Background(), multipartPhoto(t))

	var backendErr *analysis.BackendError
	require.ErrorAs(t, err, &backendErr)
	require.Len(t, f.s3.deleted, 1)
	assert.Empty(t, f.items.All())
}
