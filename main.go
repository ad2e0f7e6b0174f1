package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"livemart-backend/config"
	"livemart-backend/database"
	"livemart-backend/internal/api"
	"livemart-backend/internal/middleware"
	"livemart-backend/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	// Run database migrations and seed the store catalog
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		for _, allowed := range cfg.AllowedOrigins {
			if origin == allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
				c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				break
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Rate limiting and request-size limits
	if os.Getenv("DISABLE_RATE_LIMITING") != "true" {
		securityConfig := middleware.DefaultSecurityConfig()
		securityConfig.RateLimitRequests = cfg.RateLimitRequests
		securityConfig.RateLimitWindow = cfg.RateLimitWindow
		router.Use(middleware.SecurityMiddleware(securityConfig))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "LiveMART storefront API is running",
			"version": "1.0.0",
		})
	})

	// Initialize services
	locatorService := services.NewStoreLocatorService(db)
	inventoryClient := services.NewHTTPInventoryClient(cfg.InventoryServiceURL)
	orderClient := services.NewHTTPOrderClient(cfg.OrderServiceURL)
	cartService := services.NewCartService()
	checkoutService := services.NewCheckoutService()
	paymentService := services.NewPaymentService(orderClient, cfg.CardProcessingDelay, cfg.CashProcessingDelay)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	storeHandlers := api.NewStoreHandlers(locatorService, inventoryClient)
	cartHandlers := api.NewCartHandlers(cartService)
	paymentHandlers := api.NewPaymentHandlers(cartService, checkoutService, paymentService)

	// Public storefront routes
	apiRoutes := router.Group("/api")
	{
		apiRoutes.GET("/stores", storeHandlers.GetStores)
		apiRoutes.GET("/stores/nearby", storeHandlers.GetNearbyStores)
		apiRoutes.POST("/stores/simulate-location", storeHandlers.SimulateLocation)
		apiRoutes.GET("/retailers/:id/inventory", storeHandlers.GetRetailerInventory)
	}

	// Customer session routes
	customerRoutes := router.Group("/api", authMiddleware.AuthRequired())
	{
		customerRoutes.GET("/cart", cartHandlers.GetCart)
		customerRoutes.POST("/cart/items", cartHandlers.AddItem)
		customerRoutes.POST("/cart/items/:productId/increment", cartHandlers.IncrementLine)
		customerRoutes.DELETE("/cart/items/:productId", cartHandlers.RemoveItem)

		customerRoutes.POST("/checkout", paymentHandlers.Checkout)
		customerRoutes.GET("/payment/:checkoutId", paymentHandlers.GetPaymentSession)
		customerRoutes.POST("/payment/:checkoutId/submit", paymentHandlers.SubmitPayment)
		customerRoutes.GET("/payment/:checkoutId/events", paymentHandlers.PaymentEvents)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("LiveMART storefront API listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
