package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/clouddrive/backend/internal/config"
	"github.com/clouddrive/backend/internal/database"
	"github.com/clouddrive/backend/internal/handlers"
	"github.com/clouddrive/backend/internal/items"
	"github.com/clouddrive/backend/internal/middleware"
	"github.com/clouddrive/backend/internal/models"
	"github.com/clouddrive/backend/internal/otp"
	"github.com/clouddrive/backend/internal/quota"
	"github.com/clouddrive/backend/internal/services"
	"github.com/clouddrive/backend/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := models.AutoMigrate(database.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Persist the JWT secret so tokens survive restarts
	cfg.JWTSecret = database.EnsureJWTSecret(cfg)

	// Binary content gateway (s3, ftp or memory per config)
	gateway, err := storage.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage gateway: %v", err)
	}

	// Core wiring: item store, quota ledger, operations engine
	store := items.NewDBStore(database.DB)
	ledger := quota.NewDBLedger(database.DB)
	engine := items.NewEngine(store, ledger, gateway, time.Duration(cfg.UploadTimeoutSeconds)*time.Second)

	// OTP service backed by Redis, codes delivered via the mailer
	otpService := otp.NewService(database.RedisKV{}, otp.LogMailer{}, database.CacheKeyOTP)

	// Start folder size sync (recomputes cached folder sizes every 15 minutes)
	folderSizeSync := services.NewFolderSizeSyncService(store, 15)
	folderSizeSync.Start()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CloudDrive API v1.0",
		ServerHeader: "CloudDrive",
		BodyLimit:    50 * 1024 * 1024, // 50MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "clouddrive-api",
		})
	})

	// Websocket notification channel
	app.Use("/ws", handlers.WebSocketUpgrade)
	app.Get("/ws", websocket.New(handlers.NotificationSocket))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, otpService)
	twoFAHandler := handlers.NewTwoFAHandler()
	fileHandler := handlers.NewFileHandler(engine)
	noteHandler := handlers.NewNoteHandler(engine)
	folderHandler := handlers.NewFolderHandler(engine, ledger)
	favoriteHandler := handlers.NewFavoriteHandler(engine, ledger)
	userHandler := handlers.NewUserHandler(ledger)
	settingHandler := handlers.NewSettingHandler()

	// API routes
	api := app.Group("/api/v1")

	// Apply rate limiting to API routes (100 requests per minute by default)
	api.Use(middleware.RateLimiter(100, 1*time.Minute))

	// Public auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/forget-password", authHandler.ForgetPassword)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/reset-password", authHandler.ResetPassword)

	// Public setting routes
	setting := api.Group("/setting")
	setting.Post("/changed-password", settingHandler.ChangedPassword)
	setting.Get("/terms-and-conditions", settingHandler.TermsAndConditions)
	setting.Get("/about-us", settingHandler.AboutUs)
	setting.Get("/privacy-policy", settingHandler.PrivacyPolicy)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired(cfg))

	protected.Delete("/auth/logout", authHandler.Logout)

	// 2FA routes
	protected.Get("/auth/2fa/status", twoFAHandler.Status)
	protected.Post("/auth/2fa/setup", twoFAHandler.Setup)
	protected.Post("/auth/2fa/verify", twoFAHandler.Verify)
	protected.Post("/auth/2fa/disable", twoFAHandler.Disable)

	// User routes
	users := protected.Group("/users")
	users.Get("/storage/:userId", userHandler.Storage)

	// File routes
	files := protected.Group("/files")
	files.Post("/upload", fileHandler.Upload)
	files.Get("/images/stats/:userId", fileHandler.ImageStats)
	files.Get("/pdfs/stats/:userId", fileHandler.PDFStats)
	files.Get("/user/:userId", fileHandler.UserFiles)
	files.Get("/files-by-date/:userId/:date", fileHandler.FilesByDate)
	files.Get("/single/:userId/:fileId", fileHandler.GetSingle)
	files.Get("/trash/:userId", fileHandler.Trash)
	files.Put("/rename/:fileId", fileHandler.Rename)
	files.Post("/duplicate/:fileId", fileHandler.Duplicate)
	files.Post("/copy", fileHandler.Copy)
	files.Put("/move/:fileId", fileHandler.Move)
	files.Put("/favorite/:fileId", fileHandler.Favorite)
	files.Put("/soft-delete/:fileId", fileHandler.SoftDelete)
	files.Put("/restore/:fileId", fileHandler.Restore)
	files.Delete("/delete/:fileId", fileHandler.Delete)

	// Note routes
	notes := protected.Group("/notes")
	notes.Post("/uploads", noteHandler.Create)
	notes.Get("/all/stats/:userId", noteHandler.Stats)
	notes.Put("/rename/:noteId", noteHandler.Rename)
	notes.Post("/duplicate/:noteId", noteHandler.Duplicate)
	notes.Post("/copy", noteHandler.Copy)
	notes.Put("/favorite/:noteId", noteHandler.Favorite)
	notes.Delete("/delete/:noteId", noteHandler.Delete)

	// Folder routes
	folders := protected.Group("/folders")
	folders.Post("/create", folderHandler.Create)
	folders.Get("/stats/:userId", folderHandler.Stats)
	folders.Get("/today-folder", folderHandler.TodayFolder)
	folders.Get("/favorite/all/:userId", folderHandler.FavoriteAll)
	folders.Put("/rename/:folderId", folderHandler.Rename)
	folders.Post("/duplicate/:folderId", folderHandler.Duplicate)
	folders.Post("/copy", folderHandler.Copy)
	folders.Put("/move/:folderId", folderHandler.Move)
	folders.Put("/favorite/:folderId", folderHandler.Favorite)
	folders.Delete("/delete/:folderId", folderHandler.Delete)

	// Favorite routes
	favorites := protected.Group("/favorites")
	favorites.Get("/all/:userId", favoriteHandler.All)
	favorites.Put("/rename/:itemId", favoriteHandler.Rename)
	favorites.Post("/duplicate/:itemId", favoriteHandler.Duplicate)
	favorites.Post("/copy/:itemId", favoriteHandler.Copy)
	favorites.Put("/unfavorite/:itemId", favoriteHandler.Unfavorite)
	favorites.Delete("/delete/:itemId", favoriteHandler.Delete)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		folderSizeSync.Stop()
		app.Shutdown()
	}()

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	log.Printf("Starting CloudDrive API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
