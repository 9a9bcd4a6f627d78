package main

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/elky431-debug/creax-backend/internal/config"
	"github.com/elky431-debug/creax-backend/internal/constants"
	"github.com/elky431-debug/creax-backend/internal/database"
	"github.com/elky431-debug/creax-backend/internal/handlers"
	"github.com/elky431-debug/creax-backend/internal/middleware"
	"github.com/elky431-debug/creax-backend/internal/protection"
	"github.com/elky431-debug/creax-backend/internal/repository"
	"github.com/elky431-debug/creax-backend/internal/services"
	"github.com/elky431-debug/creax-backend/internal/storage"
	"github.com/elky431-debug/creax-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Init(cfg.LogLevel)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Asset storage
	store, err := storage.NewDiskStore(cfg.StorageDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize asset storage")
	}

	// Protection engine
	engine, err := protection.NewEngine(protection.Config{
		Brand:       cfg.BrandName,
		BlurSigma:   cfg.BlurSigma,
		JPEGQuality: cfg.JPEGQuality,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize protection engine")
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery())

	// Session middleware: Redis-backed when configured, cookie store
	// otherwise (single-instance deployments and local development)
	sessionStore := newSessionStore(cfg)
	r.Use(sessions.Sessions(constants.SessionName, sessionStore))

	// Repositories
	userRepo := repository.NewUserRepository(database.GetDB())
	missionRepo := repository.NewMissionRepository(database.GetDB())
	proposalRepo := repository.NewProposalRepository(database.GetDB())
	deliveryRepo := repository.NewDeliveryRepository(database.GetDB())
	channelRepo := repository.NewChannelRepository(database.GetDB())
	subsRepo := repository.NewSubscriptionRepository(database.GetDB())

	// Services
	messagingService := services.NewMessagingService(channelRepo)
	authService := services.NewAuthService(userRepo)
	missionService := services.NewMissionService(missionRepo, proposalRepo, deliveryRepo, userRepo, messagingService, store)
	proposalService := services.NewProposalService(proposalRepo, missionRepo, userRepo, subsRepo, messagingService, cfg.SubscriptionEnforced)
	deliveryService := services.NewDeliveryService(
		deliveryRepo, missionRepo, userRepo, messagingService, store, engine,
		time.Duration(cfg.ProtectedAssetTTLHours)*time.Hour,
		time.Duration(cfg.FinalAssetTTLHours)*time.Hour,
	)
	billingService := services.NewBillingService(subsRepo, cfg.CheckoutBaseURL)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	missionHandler := handlers.NewMissionHandler(missionService)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	messageHandler := handlers.NewMessageHandler(messagingService)
	billingHandler := handlers.NewBillingHandler(billingService, authService, cfg.BillingWebhookSecret)
	assetHandler := handlers.NewAssetHandler(deliveryService, store)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public except /me and payout details)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.PUT("/me/payout-details", middleware.RequireAuth(), authHandler.UpdatePayoutDetails)
		}

		// Mission routes (protected)
		missions := api.Group("/missions")
		missions.Use(middleware.RequireAuth())
		{
			missions.POST("", missionHandler.CreateMission)
			missions.GET("", missionHandler.ListMissions)
			missions.GET("/:id", missionHandler.GetMission)
			missions.POST("/:id/cancel", missionHandler.CancelMission)
			missions.DELETE("/:id", missionHandler.DeleteMission)

			missions.POST("/:id/proposals", proposalHandler.SubmitProposal)
			missions.GET("/:id/proposals", proposalHandler.ListProposals)

			missions.POST("/:id/deliveries", deliveryHandler.SubmitDelivery)
			missions.GET("/:id/deliveries", deliveryHandler.ListDeliveries)

			missions.GET("/:id/channel", middleware.RequireMissionParty(), messageHandler.GetMissionChannel)
		}

		// Proposal routes (protected)
		proposals := api.Group("/proposals")
		proposals.Use(middleware.RequireAuth())
		{
			proposals.POST("/:id/accept", proposalHandler.AcceptProposal)
			proposals.POST("/:id/reject", proposalHandler.RejectProposal)
			proposals.POST("/:id/withdraw", proposalHandler.WithdrawProposal)
		}

		// Delivery routes (protected)
		deliveries := api.Group("/deliveries")
		deliveries.Use(middleware.RequireAuth())
		{
			deliveries.GET("/:id", deliveryHandler.GetDelivery)
			deliveries.POST("/:id/validate", deliveryHandler.ValidateDelivery)
			deliveries.POST("/:id/request-revision", deliveryHandler.RequestRevision)
			deliveries.POST("/:id/confirm-transfer", deliveryHandler.ConfirmTransfer)
			deliveries.POST("/:id/final", deliveryHandler.SendFinal)
		}

		// Channel routes (protected)
		channels := api.Group("/channels")
		channels.Use(middleware.RequireAuth())
		{
			channels.GET("/:id/messages", messageHandler.ListMessages)
			channels.POST("/:id/messages", messageHandler.PostMessage)
		}

		// Billing routes
		billing := api.Group("/billing")
		{
			billing.POST("/checkout", middleware.RequireAuth(), billingHandler.CreateCheckout)
			billing.GET("/subscription", middleware.RequireAuth(), billingHandler.GetSubscription)
			billing.POST("/webhook", billingHandler.Webhook)
		}

		// Asset downloads (protected, re-authorized per request)
		api.GET("/assets/:ref", middleware.RequireAuth(), assetHandler.GetAsset)
	}

	// Start server
	logger.Info().Msg("server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

func newSessionStore(cfg *config.Config) sessions.Store {
	isProduction := cfg.GinMode == "release"
	options := sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	}

	if cfg.RedisHost == "" {
		store := cookie.NewStore([]byte(cfg.SessionSecret))
		store.Options(options)
		return store
	}

	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		redisAddr,                 // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create Redis session store")
	}
	store.Options(options)
	return store
}
