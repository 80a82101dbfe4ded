package main

import (
	"log"

	"github.com/atlanticweizard/storefront/config"
	"github.com/atlanticweizard/storefront/controllers"
	"github.com/atlanticweizard/storefront/middleware"
	"github.com/atlanticweizard/storefront/payu"
	"github.com/atlanticweizard/storefront/routes"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	if err := config.InitDB(cfg); err != nil {
		utils.LogError("Error initializing database: %v", err)
		log.Fatal("Error initializing database:", err)
	}
	store := storage.NewPostgresStorage(config.DB)

	// The gateway is optional at startup: without credentials the catalog
	// still serves, and checkout reports the operator error.
	gateway, err := payu.NewService(cfg.PayU)
	if err != nil {
		utils.LogError("Payment gateway not configured: %v", err)
		gateway = nil
	}

	controllers.Init(store, gateway, cfg, nil)
	middleware.Init(store)

	// Bootstrap admin and starter catalog
	if err := controllers.CreateDefaultAdmin(); err != nil {
		utils.LogError("Failed to create default admin: %v", err)
		log.Fatal("Failed to create default admin:", err)
	}
	if err := controllers.SeedProducts(); err != nil {
		utils.LogError("Failed to seed products: %v", err)
		log.Fatal("Failed to seed products:", err)
	}

	// Set up router
	router := routes.SetupRouter()

	utils.LogInfo("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
