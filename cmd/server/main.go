package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"startup_market/internal/config"
	"startup_market/internal/events"
	"startup_market/internal/handler"
	"startup_market/internal/middleware"
	"startup_market/internal/repository"
	"startup_market/internal/service"
	"startup_market/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("Failed to load DB config: %v", err)
	}
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("Failed to load app config: %v", err)
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(context.Background(), dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Token revocation ---
	var revocations repository.RevocationStore
	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to redis at %s: %v", appCfg.RedisAddr, err)
		}
		defer rdb.Close()
		revocations = repository.NewRedisRevocationStore(rdb)
		log.Printf("Token revocations stored in redis at %s", appCfg.RedisAddr)
	} else {
		revocations = repository.NewMemoryRevocationStore()
		log.Println("REDIS_ADDR not set, token revocations kept in memory")
	}

	// --- Events ---
	var publisher events.Publisher
	if appCfg.KafkaBroker != "" {
		publisher = events.NewKafkaPublisher(appCfg.KafkaBroker, appCfg.KafkaTopic)
		log.Printf("Publishing events to kafka topic %s on %s", appCfg.KafkaTopic, appCfg.KafkaBroker)
	} else {
		publisher = events.NewNopPublisher()
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("Failed to flush events: %v", err)
		}
	}()

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(appCfg.JWTSecret, appCfg.JWTExpirationHours)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	listingRepo := repository.NewListingRepository(dbPool)
	offerRepo := repository.NewOfferRepository(dbPool)
	savedRepo := repository.NewSavedListingRepository(dbPool)
	messageRepo := repository.NewMessageRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, revocations, jwtUtil, service.AuthOptions{
		InitialAdminEmail: appCfg.InitialAdminEmail,
		DemoMode:          appCfg.DemoMode,
	})
	listingService := service.NewListingService(listingRepo, userRepo, publisher, appCfg.PageSize)
	offerService := service.NewOfferService(offerRepo, listingRepo, publisher)
	savedService := service.NewSavedListingService(savedRepo, listingRepo)
	messageService := service.NewMessageService(messageRepo, listingRepo, userRepo)
	dashboardService := service.NewDashboardService(listingRepo, offerRepo, savedRepo, messageRepo)

	if appCfg.DemoMode {
		n, err := listingService.SeedDemo(context.Background())
		if err != nil {
			log.Fatalf("Failed to seed demo listings: %v", err)
		}
		if n > 0 {
			log.Printf("Seeded %d demo listings", n)
		}
	}

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	listingHandler := handler.NewListingHandler(listingService)
	offerHandler := handler.NewOfferHandler(offerService)
	savedHandler := handler.NewSavedListingHandler(savedService)
	messageHandler := handler.NewMessageHandler(messageService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// --- Setup Gin Router ---
	router := gin.Default()

	// Simple CORS middleware (allow all for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, Idempotency-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil, revocations)
	adminRoleMW := middleware.AdminMiddleware()
	sellerRoleMW := middleware.SellerMiddleware()
	buyerRoleMW := middleware.BuyerMiddleware()
	loginLimitMW := middleware.RateLimitMiddleware(middleware.NewRateLimiter(appCfg.LoginRatePerMinute))

	// --- Register Routes ---
	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, jwtAuthMW, loginLimitMW)
	listingHandler.RegisterListingRoutes(apiGroup, jwtAuthMW, sellerRoleMW, adminRoleMW)
	offerHandler.RegisterOfferRoutes(apiGroup, jwtAuthMW, buyerRoleMW, sellerRoleMW)
	savedHandler.RegisterSavedListingRoutes(apiGroup, jwtAuthMW, buyerRoleMW)
	messageHandler.RegisterMessageRoutes(apiGroup, jwtAuthMW)
	dashboardHandler.RegisterDashboardRoutes(apiGroup, jwtAuthMW, buyerRoleMW, sellerRoleMW)

	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + appCfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", appCfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
