package main

import (
	"log"
	"os"
	"time"

	"kudos/database"
	"kudos/handlers"
	"kudos/middleware"
	"kudos/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Validate critical environment variables
	validateEnvironment()

	// Initialize database
	database.InitDB()
	database.SeedAchievements()
	defer database.CloseDB()

	// Initialize the notification hub
	ws.InitHub()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB, enough for avatar uploads
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
	app.Use(middleware.RateLimitMiddleware())

	// Uploaded avatars
	app.Static("/uploads", uploadDir())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/login", handlers.Login)
	authGroup.Post("/logout", handlers.Logout)
	authGroup.Get("/check", middleware.AdminAuthMiddleware, handlers.Check)

	// Leaderboard (public)
	api.Get("/leaderboard", handlers.GetLeaderboard)
	api.Get("/leaderboard/:employeeId", handlers.GetEmployeeRank)

	// Employee routes (mutations admin-only)
	api.Post("/employees", middleware.AdminAuthMiddleware, handlers.CreateEmployee)
	api.Get("/employees/:id", handlers.GetEmployee)
	api.Put("/employees/:id", middleware.AdminAuthMiddleware, handlers.UpdateEmployee)
	api.Delete("/employees/:id", middleware.AdminAuthMiddleware, handlers.DeleteEmployee)

	// Points ledger routes (mutations admin-only, history public)
	api.Post("/points/award", middleware.AdminAuthMiddleware, handlers.AwardPoints)
	api.Put("/points/:historyId", middleware.AdminAuthMiddleware, handlers.UpdatePoints)
	api.Delete("/points/:historyId", middleware.AdminAuthMiddleware, handlers.DeletePoints)
	api.Get("/points/history/:employeeId", handlers.GetPointsHistory)

	// Achievements (public)
	api.Get("/achievements/:employeeId", handlers.GetEmployeeAchievements)

	// Notification channel
	app.Get("/ws", handlers.WebSocketUpgrade, handlers.WebSocketHandler)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🌐 Notifications available at ws://localhost:%s/ws", port)

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

	if os.Getenv("ADMIN_PASSWORD_HASH") == "" && os.Getenv("ADMIN_PASSWORD") == "" {
		log.Fatal("FATAL: set ADMIN_PASSWORD_HASH (bcrypt) or ADMIN_PASSWORD")
	}

	if os.Getenv("APP_ENV") == "production" {
		if os.Getenv("ADMIN_PASSWORD_HASH") == "" {
			log.Println("WARNING: using a plaintext ADMIN_PASSWORD in production")
		}
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

// Helper functions
func uploadDir() string {
	return getEnv("UPLOAD_DIR", "./uploads")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
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
