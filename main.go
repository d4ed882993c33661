package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"quizrush/database"
	"quizrush/game"
	"quizrush/handlers"
	"quizrush/middleware"
	"quizrush/services"
	"quizrush/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Wire the game core: persistent store + question bank behind the
	// in-memory orchestrator.
	store := services.NewRoomStore()
	bank := services.NewQuestionBank()
	orch := game.NewOrchestrator(store, bank)

	// Background room hygiene
	services.InitCleanupService(orch)
	services.GetCleanupService().Start()
	defer func() {
		if cs := services.GetCleanupService(); cs != nil {
			cs.Stop()
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.FiberRateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.FiberAuthRateLimitMiddleware())
	authGroup.Post("/guest", handlers.GuestLogin)
	authGroup.Post("/refresh", middleware.AuthMiddleware, handlers.RefreshToken)

	// Room read routes
	rooms := handlers.NewRoomHandlers(orch, store)
	api.Get("/rooms", rooms.ListActiveRooms)
	api.Get("/rooms/recent", rooms.GetRecentRooms)
	api.Get("/rooms/:code", rooms.GetRoomByCode)
	api.Get("/rooms/:code/result", rooms.GetResult)
	api.Get("/rooms/:code/events", rooms.GetRoomEvents)

	// Player routes (require authentication)
	playerGroup := api.Group("/players")
	playerGroup.Use(middleware.AuthMiddleware)
	playerGroup.Get("/me/history", rooms.GetMyHistory)

	// Tell ws clients where the upgrade endpoint lives; Fiber does not
	// proxy WebSocket, the ws server has its own port.
	app.Get("/ws", func(c *fiber.Ctx) error {
		wsPort := getEnv("WS_PORT", "4000")
		wsURL := "ws://localhost:" + wsPort + "/ws"
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"error":   "WebSocket endpoint moved",
			"message": "Please connect to " + wsURL,
			"ws_url":  wsURL,
		})
	})

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	// Start WebSocket server (pure net/http)
	wsPort := getEnv("WS_PORT", "4000")
	ws := handlers.NewWSServer(orch)

	wsMux := http.NewServeMux()
	wsMux.HandleFunc("/ws", ws.HandleWS)
	wsMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = utils.JSONSuccess(w, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	var wsHandler http.Handler = wsMux
	wsHandler = middleware.RateLimitMiddleware(wsHandler)
	wsHandler = middleware.HTTPCORSMiddleware([]string{corsOrigins})(wsHandler)
	wsHandler = middleware.HTTPRecoverMiddleware(wsHandler)

	wsServer := &http.Server{
		Addr:    ":" + wsPort,
		Handler: wsHandler,
	}

	go func() {
		log.Printf("🌐 WebSocket server starting on port %s", wsPort)
		if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("WebSocket server failed:", err)
		}
	}()

	// Start Fiber HTTP/REST server
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🔐 JWT Secret configured: %v", os.Getenv("JWT_SECRET") != "")
	log.Printf("🌐 WebSocket available at ws://localhost:%s/ws", wsPort)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
