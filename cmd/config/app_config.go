package config

import (
	"context"
	"os"
	"time"

	"FreshKeeper/internal/api/handlers"
	"FreshKeeper/internal/api/routes"
	"FreshKeeper/internal/middleware"
	"FreshKeeper/internal/utils"
	"FreshKeeper/internal/utils/storage"
	"FreshKeeper/pkg/analysis"
	"FreshKeeper/pkg/food"
	"FreshKeeper/pkg/inventory"
	"FreshKeeper/pkg/kvstore"
	"FreshKeeper/pkg/selection"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()

	// Stores
	kv := kvstore.NewGormStore(db)
	itemStore := inventory.NewStore(kv)
	selectionStore := selection.NewStore(kv, itemStore)

	// Service
	gateway := analysis.NewGateway(utils.GetConfig("BACKEND_URL"))
	foodService := food.NewFoodService(itemStore, selectionStore, gateway, s3, validator)

	if err := foodService.Load(context.Background()); err != nil {
		log.Errorf("error loading persisted state: %v", err)
	}

	// Handler
	foodHandler := handlers.NewFoodHandler(foodService, validator)
	selectionHandler := handlers.NewSelectionHandler(foodService, validator)

	// routes
	routesConfig := routes.Config{
		App:              app,
		FoodHandler:      foodHandler,
		SelectionHandler: selectionHandler,
		Middleware:       middlewares,
	}
	routesConfig.Setup()
	return app, nil
}
