package routes

import (
	"FreshKeeper/internal/api/handlers"
	"FreshKeeper/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App              *fiber.App
	FoodHandler      handlers.FoodHandler
	SelectionHandler handlers.SelectionHandler
	Middleware       middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.FoodItems()
	c.Selection()
	c.GuestRoute()
}

func (c *Config) FoodItems() {
	foodItems := c.App.Group("/api/v1/food-items")
	foodItems.Get("/dashboard", c.FoodHandler.GetDashboardStats)

	// Bulk import/export and sample data
	foodItems.Get("/export", c.FoodHandler.ExportItems)
	foodItems.Post("/import", c.FoodHandler.ImportItems)
	foodItems.Post("/seed", c.FoodHandler.SeedSampleItems)

	// Photo analysis and digest
	foodItems.Post("/analyze", c.FoodHandler.AnalyzePhoto)
	foodItems.Post("/digest", c.FoodHandler.SendExpiryDigest)

	// Basic CRUD operations
	foodItems.Post("", c.FoodHandler.AddFoodItem)
	foodItems.Get("", c.FoodHandler.GetFoodItems)
	foodItems.Delete("", c.FoodHandler.ClearFoodItems)
	foodItems.Get("/:id", c.FoodHandler.GetFoodItemDetails)
	foodItems.Patch("/:id", c.FoodHandler.UpdateFoodItem)
	foodItems.Delete("/:id", c.FoodHandler.DeleteFoodItem)
}

func (c *Config) Selection() {
	sel := c.App.Group("/api/v1/selection")
	sel.Get("", c.SelectionHandler.GetSelectedItems)
	sel.Post("/toggle", c.SelectionHandler.ToggleSelection)
	sel.Delete("", c.SelectionHandler.ClearSelection)
	sel.Post("/suggest-menu", c.SelectionHandler.SuggestMenu)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
