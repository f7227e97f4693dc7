package food

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"FreshKeeper/domain"
	"FreshKeeper/entities"
	"FreshKeeper/internal/utils/mailing"
	"FreshKeeper/internal/utils/storage"
	"FreshKeeper/pkg/analysis"
	"FreshKeeper/pkg/expiry"
	"FreshKeeper/pkg/inventory"
	"FreshKeeper/pkg/selection"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const expiringSoonDays = 3

type (
	FoodService interface {
		Load(ctx context.Context) error

		AddFoodItem(ctx context.Context, req domain.AddFoodItemRequest) (domain.FoodItemResponse, error)
		UpdateFoodItem(ctx context.Context, id string, req domain.UpdateFoodItemRequest) error
		DeleteFoodItem(ctx context.Context, id string) error
		ClearFoodItems(ctx context.Context) error
		GetFoodItems(ctx context.Context, pred expiry.Predicate, mode expiry.SortMode) ([]domain.FoodItemResponse, error)
		GetFoodItemByID(ctx context.Context, id string) (domain.FoodItemResponse, error)

		AnalyzePhoto(ctx context.Context, image *multipart.FileHeader) (domain.FoodItemGuess, error)

		ToggleSelection(ctx context.Context, id string) error
		GetSelectedItems(ctx context.Context) (domain.SelectionResponse, error)
		ClearSelection(ctx context.Context) error
		SuggestMenu(ctx context.Context) (domain.MenuSuggestionResponse, error)

		ExportItems(ctx context.Context) ([]byte, error)
		ImportItems(ctx context.Context, raw []byte) (domain.ImportItemsResponse, error)
		SeedSampleItems(ctx context.Context) ([]domain.FoodItemResponse, error)
		GetDashboardStats(ctx context.Context) (domain.DashboardStatsResponse, error)
		SendExpiryDigest(ctx context.Context, req domain.SendDigestRequest) error
	}

	foodService struct {
		items     inventory.Store
		selection selection.Store
		gateway   analysis.Gateway
		s3        storage.AwsS3
		validator *validator.Validate
	}
)

func NewFoodService(
	items inventory.Store,
	sel selection.Store,
	gateway analysis.Gateway,
	s3 storage.AwsS3,
	validator *validator.Validate,
) FoodService {
	return &foodService{
		items:     items,
		selection: sel,
		gateway:   gateway,
		s3:        s3,
		validator: validator,
	}
}

func (s *foodService) Load(ctx context.Context) error {
	if err := s.items.Load(ctx); err != nil {
		return err
	}
	return s.selection.Load(ctx)
}

func (s *foodService) AddFoodItem(ctx context.Context, req domain.AddFoodItemRequest) (domain.FoodItemResponse, error) {
	if _, err := expiry.DaysRemaining(req.ExpirationDate, time.Now()); err != nil {
		return domain.FoodItemResponse{}, domain.ErrInvalidExpirationDate
	}
	if req.Amount < 0 {
		return domain.FoodItemResponse{}, domain.ErrInvalidAmount
	}

	item := entities.FoodItem{
		ID:             uuid.New(),
		Name:           req.Name,
		ExpirationDate: req.ExpirationDate,
		ExpirationType: req.ExpirationType,
		ImageURL:       req.ImageURL,
		Amount:         req.Amount,
		Unit:           req.Unit,
		Category:       req.Category,
		Content:        req.Content,
	}

	if err := s.items.Append(ctx, &item); err != nil {
		return domain.FoodItemResponse{}, err
	}

	now := time.Now()
	return toResponse(item, now, expiry.MaxDays(s.items.All(), now)), nil
}

func (s *foodService) UpdateFoodItem(ctx context.Context, id string, req domain.UpdateFoodItemRequest) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrParseUUID
	}

	if req.ExpirationDate != nil {
		if _, err := expiry.DaysRemaining(*req.ExpirationDate, time.Now()); err != nil {
			return domain.ErrInvalidExpirationDate
		}
	}
	if req.Amount != nil && *req.Amount < 0 {
		return domain.ErrInvalidAmount
	}

	patch := inventory.Patch{
		Name:           req.Name,
		ExpirationDate: req.ExpirationDate,
		ExpirationType: req.ExpirationType,
		ImageURL:       req.ImageURL,
		Amount:         req.Amount,
		Unit:           req.Unit,
		Category:       req.Category,
		Content:        req.Content,
	}

	touched, err := s.items.UpsertByID(ctx, itemID, patch)
	if err != nil {
		return err
	}
	if touched == 0 {
		return domain.ErrFoodItemNotFound
	}
	return nil
}

func (s *foodService) DeleteFoodItem(ctx context.Context, id string) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrParseUUID
	}

	item, err := s.items.FindByID(itemID)
	if err != nil {
		if errors.Is(err, inventory.ErrItemNotFound) {
			return domain.ErrFoodItemNotFound
		}
		return err
	}

	if item.ImageURL != "" {
		objectKey := s.s3.GetObjectKeyFromLink(item.ImageURL)
		if objectKey != "" {
			_ = s.s3.DeleteFile(objectKey)
		}
	}

	removed, err := s.items.RemoveByID(ctx, itemID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrFoodItemNotFound
	}
	return nil
}

func (s *foodService) ClearFoodItems(ctx context.Context) error {
	return s.items.Clear(ctx)
}

func (s *foodService) GetFoodItems(ctx context.Context, pred expiry.Predicate, mode expiry.SortMode) ([]domain.FoodItemResponse, error) {
	now := time.Now()
	filtered := expiry.Filter(s.items.All(), pred)
	sorted := expiry.Sort(filtered, mode, now)

	// Urgency is relative to the longest-lived item of the displayed set.
	maxDays := expiry.MaxDays(sorted, now)

	responses := make([]domain.FoodItemResponse, 0, len(sorted))
	for _, item := range sorted {
		responses = append(responses, toResponse(item, now, maxDays))
	}
	return responses, nil
}

func (s *foodService) GetFoodItemByID(ctx context.Context, id string) (domain.FoodItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return domain.FoodItemResponse{}, domain.ErrParseUUID
	}

	item, err := s.items.FindByID(itemID)
	if err != nil {
		if errors.Is(err, inventory.ErrItemNotFound) {
			return domain.FoodItemResponse{}, domain.ErrFoodItemNotFound
		}
		return domain.FoodItemResponse{}, err
	}

	now := time.Now()
	return toResponse(item, now, expiry.MaxDays(s.items.All(), now)), nil
}

// AnalyzePhoto stores the photo for a stable image URL and asks the backend
// for a structured guess. Nothing is appended to the inventory here; the
// caller confirms the guess through AddFoodItem.
func (s *foodService) AnalyzePhoto(ctx context.Context, image *multipart.FileHeader) (domain.FoodItemGuess, error) {
	file, err := image.Open()
	if err != nil {
		return domain.FoodItemGuess{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.FoodItemGuess{}, err
	}

	fileName := fmt.Sprintf("food-photo-%s", uuid.New().String())
	objectKey, err := s.s3.UploadFile(fileName, image, "food-photos", storage.AllowImage...)
	if err != nil {
		return domain.FoodItemGuess{}, err
	}

	contentType := image.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	guess, err := s.gateway.AnalyzeImage(ctx, image.Filename, data, contentType)
	if err != nil {
		_ = s.s3.DeleteFile(objectKey)
		return domain.FoodItemGuess{}, err
	}

	// Our stored copy is authoritative over whatever URL the backend echoed.
	guess.ImageURL = s.s3.GetPublicLinkKey(objectKey)
	return guess, nil
}

func (s *foodService) ToggleSelection(ctx context.Context, id string) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrParseUUID
	}
	if _, err := s.items.FindByID(itemID); err != nil {
		if errors.Is(err, inventory.ErrItemNotFound) {
			return domain.ErrFoodItemNotFound
		}
		return err
	}
	return s.selection.Toggle(ctx, itemID)
}

func (s *foodService) GetSelectedItems(ctx context.Context) (domain.SelectionResponse, error) {
	items := s.selection.Items()
	now := time.Now()
	maxDays := expiry.MaxDays(items, now)

	responses := make([]domain.FoodItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toResponse(item, now, maxDays))
	}
	return domain.SelectionResponse{Items: responses, Total: len(responses)}, nil
}

func (s *foodService) ClearSelection(ctx context.Context) error {
	return s.selection.Clear(ctx)
}

func (s *foodService) SuggestMenu(ctx context.Context) (domain.MenuSuggestionResponse, error) {
	selected := s.selection.Items()
	if len(selected) == 0 {
		return domain.MenuSuggestionResponse{}, domain.ErrNoItemsSelected
	}

	suggestion, err := s.gateway.SuggestMenu(ctx, selected)
	if err != nil {
		return domain.MenuSuggestionResponse{}, err
	}

	now := time.Now()
	maxDays := expiry.MaxDays(selected, now)
	used := make([]domain.FoodItemResponse, 0, len(selected))
	for _, item := range selected {
		used = append(used, toResponse(item, now, maxDays))
	}

	return domain.MenuSuggestionResponse{
		Menu:        suggestion.Menu,
		Ingredients: suggestion.Ingredients,
		Reason:      suggestion.Reason,
		UsedItems:   used,
	}, nil
}

func (s *foodService) ExportItems(ctx context.Context) ([]byte, error) {
	return json.MarshalIndent(s.items.All(), "", "  ")
}

// ImportItems appends every valid record of a JSON array individually and
// silently skips invalid ones; a malformed record never rejects the batch.
func (s *foodService) ImportItems(ctx context.Context, raw []byte) (domain.ImportItemsResponse, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return domain.ImportItemsResponse{}, domain.ErrInvalidImportPayload
	}

	res := domain.ImportItemsResponse{}
	for _, record := range records {
		var imported domain.ImportFoodItem
		if err := json.Unmarshal(record, &imported); err != nil {
			res.Skipped++
			continue
		}
		if err := s.validator.Struct(imported); err != nil {
			res.Skipped++
			continue
		}
		if _, err := expiry.DaysRemaining(imported.ExpirationDate, time.Now()); err != nil {
			res.Skipped++
			continue
		}

		item := entities.FoodItem{
			Name:           imported.Name,
			ExpirationDate: imported.ExpirationDate,
			ExpirationType: imported.ExpirationType,
			ImageURL:       imported.ImageURL,
			Amount:         imported.Amount,
			Unit:           imported.Unit,
			Category:       imported.Category,
			Content:        imported.Content,
		}
		if err := s.items.Append(ctx, &item); err != nil {
			return res, err
		}
		res.Imported++
	}
	return res, nil
}

func (s *foodService) SeedSampleItems(ctx context.Context) ([]domain.FoodItemResponse, error) {
	now := time.Now()
	samples := []entities.FoodItem{
		{Name: "Carrot", ExpirationDate: now.AddDate(0, 0, 12).Format("2006-01-02"), Amount: 300, Unit: "g", Category: "vegetable"},
		{Name: "Pork", ExpirationDate: now.AddDate(0, 0, 2).Format("2006-01-02"), Amount: 500, Unit: "g", Category: "meat"},
		{Name: "Potato", ExpirationDate: now.AddDate(0, 0, 17).Format("2006-01-02"), Amount: 400, Unit: "g", Category: "vegetable"},
	}

	responses := make([]domain.FoodItemResponse, 0, len(samples))
	for i := range samples {
		if err := s.items.Append(ctx, &samples[i]); err != nil {
			return responses, err
		}
	}

	maxDays := expiry.MaxDays(s.items.All(), now)
	for _, item := range samples {
		responses = append(responses, toResponse(item, now, maxDays))
	}
	return responses, nil
}

func (s *foodService) GetDashboardStats(ctx context.Context) (domain.DashboardStatsResponse, error) {
	now := time.Now()
	items := s.items.All()
	maxDays := expiry.MaxDays(items, now)

	stats := domain.DashboardStatsResponse{TotalItems: len(items)}
	for _, item := range items {
		days, err := expiry.DaysRemaining(item.ExpirationDate, now)
		if err != nil {
			stats.UnknownItems++
			continue
		}
		switch expiry.Bucket(days, maxDays) {
		case expiry.UrgencySafe:
			stats.SafeItems++
		case expiry.UrgencyWarning:
			stats.WarningItems++
		case expiry.UrgencyCritical:
			stats.CriticalItems++
		case expiry.UrgencyExpired:
			stats.ExpiredItems++
		}
		if days > 0 && days <= expiringSoonDays {
			stats.ExpiringSoon++
		}
	}
	return stats, nil
}

func (s *foodService) SendExpiryDigest(ctx context.Context, req domain.SendDigestRequest) error {
	withinDays := req.WithinDays
	if withinDays <= 0 {
		withinDays = expiringSoonDays
	}

	now := time.Now()
	var expiring []entities.FoodItem
	for _, item := range s.items.All() {
		days, err := expiry.DaysRemaining(item.ExpirationDate, now)
		if err != nil {
			continue
		}
		if days <= withinDays {
			expiring = append(expiring, item)
		}
	}

	body := buildDigestBody(expiring, withinDays, now)
	subject := fmt.Sprintf("FreshKeeper: %d item(s) expiring within %d days", len(expiring), withinDays)
	return mailing.SendMail(req.Email, subject, body)
}

func buildDigestBody(items []entities.FoodItem, withinDays int, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Items expiring within %d days</h2>", withinDays)
	if len(items) == 0 {
		b.WriteString("<p>Nothing is about to expire. Well stocked!</p>")
		return b.String()
	}

	b.WriteString("<ul>")
	for _, item := range items {
		days, err := expiry.DaysRemaining(item.ExpirationDate, now)
		label := item.ExpirationDate
		if err == nil && days <= 0 {
			label = "already expired"
		} else if err == nil {
			label = fmt.Sprintf("%d day(s) left (%s)", days, item.ExpirationDate)
		}
		fmt.Fprintf(&b, "<li>%s: %.0f%s, %s</li>", item.Name, item.Amount, item.Unit, label)
	}
	b.WriteString("</ul>")
	return b.String()
}

func toResponse(item entities.FoodItem, asOf time.Time, maxDays int) domain.FoodItemResponse {
	res := domain.FoodItemResponse{
		ID:             item.ID.String(),
		Name:           item.Name,
		ExpirationDate: item.ExpirationDate,
		ExpirationType: item.ExpirationType,
		ImageURL:       item.ImageURL,
		Amount:         item.Amount,
		Unit:           item.Unit,
		Category:       item.Category,
		Content:        item.Content,
		Status:         expiry.Status(item.ExpirationDate, asOf, maxDays),
		CreatedAt:      item.CreatedAt,
	}
	if days, err := expiry.DaysRemaining(item.ExpirationDate, asOf); err == nil {
		res.DaysRemaining = &days
	}
	return res
}
