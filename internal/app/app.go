package app

import (
	"agriloop-backend/internal/analyzer"
	"agriloop-backend/internal/auth"
	"agriloop-backend/internal/config"
	"agriloop-backend/internal/database"
	"agriloop-backend/internal/events"
	"agriloop-backend/internal/health"
	"agriloop-backend/internal/ledger"
	"agriloop-backend/internal/middleware"
	"agriloop-backend/internal/pkg/constants"
	"agriloop-backend/internal/rewards"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. Returns the DB and Redis handles so main can verify
// connectivity before listening.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	// Health module (no auth)
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			healthHandlers.DB = sqlDB
		}
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)

	// db may be nil if DATABASE_URL not set (e.g. tests); protected modules
	// are only mounted with a DB.
	if db != nil && rdb != nil {
		// Auth module (no auth middleware)
		authService := &auth.Service{DB: db}
		authHandlers := &auth.Handlers{Service: authService, Rdb: rdb, Config: sessionCfg}
		authGroup := app.Group("/api/v1/auth")
		authGroup.Post("/register", authHandlers.Register)
		authGroup.Post("/login", authHandlers.Login)
		authGroup.Get("/me", authHandlers.Me)
		authGroup.Delete("/logout", authHandlers.Logout)

		// Event bus: DB log + Redis publish + in-process rewards crediting
		bus := &events.Bus{DB: db, Rdb: rdb, Channel: cfg.EventChannel}
		rewardsService := &rewards.Service{DB: db}
		bus.Subscribe(rewardsService.HandleEvent)

		// Ledger module
		ledgerService := &ledger.Service{DB: db, Events: bus}
		ledgerHandlers := &ledger.Handlers{
			Owner:     ledgerService.ForOwner(),
			Buyer:     ledgerService.ForBuyer(),
			Collector: ledgerService.ForCollector(),
			Service:   ledgerService,
		}
		listingsGroup := app.Group("/api/v1/listings", middleware.RequireAuth())
		listingsGroup.Post("/create-listing", middleware.AuthorizePermission(constants.CreateListing), ledgerHandlers.CreateListing)
		listingsGroup.Get("/get-my-listings", middleware.AuthorizePermission(constants.ViewOwnListings), ledgerHandlers.GetMyListings)
		listingsGroup.Get("/get-open-listings", middleware.AuthorizePermission(constants.ViewOpenListings), ledgerHandlers.GetOpenListings)
		listingsGroup.Get("/get-listing/:listing_id", ledgerHandlers.GetListingByID)
		listingsGroup.Post("/place-bid", middleware.AuthorizePermission(constants.PlaceBid), ledgerHandlers.PlaceBid)
		listingsGroup.Get("/get-my-bids", middleware.AuthorizePermission(constants.ViewOwnBids), ledgerHandlers.GetMyBids)
		listingsGroup.Post("/accept-bid", middleware.AuthorizePermission(constants.AcceptBid), ledgerHandlers.AcceptBid)
		listingsGroup.Post("/confirm-pickup", middleware.AuthorizePermission(constants.ConfirmPickup), ledgerHandlers.ConfirmPickup)

		// Ledger events module
		eventHandlers := &events.Handlers{Bus: bus}
		eventsGroup := app.Group("/api/v1/ledger-events", middleware.RequireAuth())
		eventsGroup.Get("/get-listing-events/:listing_id", eventHandlers.GetListingEvents)

		// Rewards module
		rewardsHandlers := &rewards.Handlers{Service: rewardsService}
		rewardsGroup := app.Group("/api/v1/rewards", middleware.RequireAuth())
		rewardsGroup.Get("/get-balance", rewardsHandlers.GetBalance)

		// Analyzer module
		analyzerHandlers := &analyzer.Handlers{
			Client: &analyzer.GeminiClient{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel},
		}
		analyzerGroup := app.Group("/api/v1/analyzer", middleware.RequireAuth())
		analyzerGroup.Post("/analyze-waste", middleware.AuthorizePermission(constants.AnalyzeWaste), analyzerHandlers.AnalyzeWaste)
	}

	return app, db, rdb, nil
}
