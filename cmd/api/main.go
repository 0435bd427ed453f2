package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"certgate/internal/cache"
	"certgate/internal/config"
	"certgate/internal/database"
	"certgate/internal/discord"
	"certgate/internal/handler"
	"certgate/internal/logger"
	"certgate/internal/middleware"
	"certgate/internal/quiz"
	"certgate/internal/repository"
	"certgate/internal/service"
	"certgate/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis client and session store
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	sessionStore := session.NewRedisStore(redisClient)

	// Initialize repositories
	userRepository := repository.NewSQLXUserRepository(db)
	submissionRepository := repository.NewSQLXSubmissionRepository(db)

	// The question set is fixed and shared by the quiz endpoint, the scorer
	// and the Discord notifications.
	questionSet := quiz.DefaultSet()

	// Initialize the Discord bot
	bot, err := discord.NewBot(cfg.Discord, cfg.Server.BaseURL, questionSet)
	if err != nil {
		appLogger.Fatal("Failed to create Discord bot", zap.Error(err))
	}

	// Initialize services
	authService, err := service.NewAuthService(userRepository, sessionStore, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	appLogger.Info("AuthService initialized")

	submissionService := service.NewSubmissionService(submissionRepository, userRepository, questionSet, bot)
	approvalService := service.NewApprovalService(submissionRepository, bot)

	// The bot resolves button clicks through the same guarded transition as
	// the dashboard.
	bot.SetApprovalService(approvalService)
	if err := bot.Start(); err != nil {
		appLogger.Fatal("Failed to start Discord bot", zap.Error(err))
	}
	appLogger.Info("Discord bot connected")

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cfg)
	submissionHandler := handler.NewSubmissionHandler(submissionService, approvalService, questionSet)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.BaseURL, AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", AllowCredentials: true, MaxAge: 300}))
	app.Use(recover.New())

	// OAuth routes
	app.Get("/auth/discord", authHandler.DiscordLogin)
	app.Get("/auth/discord/callback", authHandler.DiscordCallback)

	// API group
	apiGroup := app.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.Get("/me", middleware.OptionalAuth(authService), authHandler.Me)
	authGroup.Post("/logout", middleware.Protected(authService), authHandler.Logout)

	apiGroup.Get("/quiz/questions", middleware.Protected(authService), submissionHandler.GetQuestions)

	apiGroup.Post("/submissions", middleware.Protected(authService), submissionHandler.CreateSubmission)
	apiGroup.Get("/submissions", middleware.Protected(authService), middleware.RequireAdmin(), submissionHandler.ListSubmissions)
	apiGroup.Get("/submissions/:id", middleware.Protected(authService), submissionHandler.GetSubmission)

	adminGroup := apiGroup.Group("/admin", middleware.Protected(authService), middleware.RequireAdmin())
	adminGroup.Post("/submissions/:id/action", submissionHandler.ResolveSubmission)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bot.Close(); err != nil {
		appLogger.Error("Failed to close Discord session", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
