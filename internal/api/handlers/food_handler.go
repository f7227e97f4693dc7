package handlers

import (
	"errors"
	"strconv"

	"FreshKeeper/domain"
	"FreshKeeper/internal/api/presenters"
	"FreshKeeper/pkg/analysis"
	"FreshKeeper/pkg/expiry"
	"FreshKeeper/pkg/food"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	FoodHandler interface {
		AddFoodItem(c *fiber.Ctx) error
		UpdateFoodItem(c *fiber.Ctx) error
		DeleteFoodItem(c *fiber.Ctx) error
		ClearFoodItems(c *fiber.Ctx) error
		GetFoodItems(c *fiber.Ctx) error
		GetFoodItemDetails(c *fiber.Ctx) error
		AnalyzePhoto(c *fiber.Ctx) error
		ExportItems(c *fiber.Ctx) error
		ImportItems(c *fiber.Ctx) error
		SeedSampleItems(c *fiber.Ctx) error
		GetDashboardStats(c *fiber.Ctx) error
		SendExpiryDigest(c *fiber.Ctx) error
	}

	foodHandler struct {
		foodService food.FoodService
		validator   *validator.Validate
	}
)

func NewFoodHandler(foodService food.FoodService, validator *validator.Validate) FoodHandler {
	return &foodHandler{
		foodService: foodService,
		validator:   validator,
	}
}

func (h *foodHandler) AddFoodItem(c *fiber.Ctx) error {
	req := new(domain.AddFoodItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedAddFoodItem, err)
	}

	res, err := h.foodService.AddFoodItem(c.Context(), *req)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAddFoodItem, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessAddFoodItem)
}

func (h *foodHandler) UpdateFoodItem(c *fiber.Ctx) error {
	itemID := c.Params("id")
	req := new(domain.UpdateFoodItemRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateFoodItem, err)
	}

	if err := h.foodService.UpdateFoodItem(c.Context(), itemID, *req); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedUpdateFoodItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessUpdateFoodItem)
}

func (h *foodHandler) DeleteFoodItem(c *fiber.Ctx) error {
	itemID := c.Params("id")

	if err := h.foodService.DeleteFoodItem(c.Context(), itemID); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedDeleteFoodItem, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteFoodItem)
}

func (h *foodHandler) ClearFoodItems(c *fiber.Ctx) error {
	if err := h.foodService.ClearFoodItems(c.Context()); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedClearFoodItems, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessClearFoodItems)
}

func (h *foodHandler) GetFoodItems(c *fiber.Ctx) error {
	pred := expiry.Predicate{
		Unit:     c.Query("unit", ""),
		Category: c.Query("category", ""),
	}
	if raw := c.Query("amount_min", ""); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			pred.AmountMin = &v
		}
	}
	if raw := c.Query("amount_max", ""); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			pred.AmountMax = &v
		}
	}

	mode := expiry.SortMode(c.Query("sort", string(expiry.SortInsertionOrder)))

	items, err := h.foodService.GetFoodItems(c.Context(), pred, mode)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetFoodItems, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"items": items,
		"total": len(items),
	}, fiber.StatusOK, domain.MessageSuccessGetFoodItems)
}

func (h *foodHandler) GetFoodItemDetails(c *fiber.Ctx) error {
	itemID := c.Params("id")

	item, err := h.foodService.GetFoodItemByID(c.Context(), itemID)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetFoodItems, err)
	}

	return presenters.SuccessResponse(c, item, fiber.StatusOK, domain.MessageSuccessGetFoodItems)
}

func (h *foodHandler) AnalyzePhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	guess, err := h.foodService.AnalyzePhoto(c.Context(), file)
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedAnalyzePhoto, err)
	}

	return presenters.SuccessResponse(c, guess, fiber.StatusOK, domain.MessageSuccessAnalyzePhoto)
}

func (h *foodHandler) ExportItems(c *fiber.Ctx) error {
	data, err := h.foodService.ExportItems(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedExportItems, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="food-items.json"`)
	return c.Status(fiber.StatusOK).Send(data)
}

func (h *foodHandler) ImportItems(c *fiber.Ctx) error {
	res, err := h.foodService.ImportItems(c.Context(), c.Body())
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedImportItems, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessImportItems)
}

func (h *foodHandler) SeedSampleItems(c *fiber.Ctx) error {
	items, err := h.foodService.SeedSampleItems(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedSeedItems, err)
	}

	return presenters.SuccessResponse(c, items, fiber.StatusCreated, domain.MessageSuccessSeedItems)
}

func (h *foodHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.foodService.GetDashboardStats(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetDashboardStats, err)
	}

	return presenters.SuccessResponse(c, stats, fiber.StatusOK, domain.MessageSuccessGetDashboardStats)
}

func (h *foodHandler) SendExpiryDigest(c *fiber.Ctx) error {
	req := new(domain.SendDigestRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSendDigest, err)
	}

	if err := h.foodService.SendExpiryDigest(c.Context(), *req); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedSendDigest, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessSendDigest)
}

// statusFor maps the error taxonomy onto HTTP statuses: validation 400,
// missing item 404, backend failure 502, anything else (storage included) 500.
func statusFor(err error) int {
	var backendErr *analysis.BackendError
	switch {
	case errors.Is(err, domain.ErrFoodItemNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrParseUUID),
		errors.Is(err, domain.ErrInvalidExpirationDate),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidExpirationType),
		errors.Is(err, domain.ErrInvalidImportPayload),
		errors.Is(err, domain.ErrNoItemsSelected):
		return fiber.StatusBadRequest
	case errors.As(err, &backendErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
