package handlers

import (
	"FreshKeeper/domain"
	"FreshKeeper/internal/api/presenters"
	"FreshKeeper/pkg/food"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	SelectionHandler interface {
		GetSelectedItems(c *fiber.Ctx) error
		ToggleSelection(c *fiber.Ctx) error
		ClearSelection(c *fiber.Ctx) error
		SuggestMenu(c *fiber.Ctx) error
	}

	selectionHandler struct {
		foodService food.FoodService
		validator   *validator.Validate
	}
)

func NewSelectionHandler(foodService food.FoodService, validator *validator.Validate) SelectionHandler {
	return &selectionHandler{
		foodService: foodService,
		validator:   validator,
	}
}

func (h *selectionHandler) GetSelectedItems(c *fiber.Ctx) error {
	res, err := h.foodService.GetSelectedItems(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedGetSelection, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetSelection)
}

func (h *selectionHandler) ToggleSelection(c *fiber.Ctx) error {
	req := new(domain.ToggleSelectionRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedToggleSelection, err)
	}

	if err := h.foodService.ToggleSelection(c.Context(), req.ID); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedToggleSelection, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessToggleSelection)
}

func (h *selectionHandler) ClearSelection(c *fiber.Ctx) error {
	if err := h.foodService.ClearSelection(c.Context()); err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedClearSelection, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessClearSelection)
}

func (h *selectionHandler) SuggestMenu(c *fiber.Ctx) error {
	res, err := h.foodService.SuggestMenu(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, statusFor(err), domain.MessageFailedSuggestMenu, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSuggestMenu)
}
