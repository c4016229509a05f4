package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"carteira/internal/config"
	"carteira/internal/database"
	"carteira/internal/handlers"
	"carteira/internal/logger"
	"carteira/internal/middleware"
	"carteira/internal/services"
	"carteira/internal/uploads"
	"carteira/internal/validator"

	_ "carteira/internal/docs" // Import swagger docs
)

// @title           Carteira API
// @version         1.0
// @description     Carteira tracks bank accounts, categorized income and expenses, monthly budgets per category and exports of the movement history.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config) error {
	log := logger.Get()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	// Database
	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := uploads.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize upload store: %w", err)
	}

	// Services
	db := dbManager.DB()
	period := services.Period{YearScoped: cfg.MonthScopeByYear, Location: cfg.Location}
	userService := services.NewUserService(db)
	profileService := services.NewProfileService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, accountService, period)
	reportService := services.NewReportService(db, period)
	auditService := services.NewAuditService(db)

	tokens := middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	authLimiter, err := middleware.NewIPLimiter(cfg.AuthRateLimit)
	if err != nil {
		return fmt.Errorf("invalid AUTH_RATE_LIMIT: %w", err)
	}

	// Router
	router := gin.New()
	router.MaxMultipartMemory = uploads.MaxFileSize
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if local, ok := store.(*uploads.LocalStore); ok {
		router.Static("/media", local.Root())
	}

	handlers.RegisterRoutes(router.Group("/api/v1"), handlers.Handlers{
		Auth:        handlers.NewAuthHandler(userService, tokens, auditService),
		Profile:     handlers.NewProfileHandler(userService, profileService, store, auditService),
		Account:     handlers.NewAccountHandler(accountService, store, auditService),
		Category:    handlers.NewCategoryHandler(categoryService, reportService, auditService),
		Planning:    handlers.NewPlanningHandler(categoryService, reportService, auditService),
		Transaction: handlers.NewTransactionHandler(transactionService, auditService),
		Report:      handlers.NewReportHandler(accountService, categoryService, transactionService, reportService, store, period),
	}, tokens.Auth(), middleware.RateLimit(authLimiter))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Starting carteira server", "port", cfg.Port, "env", cfg.Env, "db", cfg.DBDriver, "uploads", cfg.UploadBackend)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server stopped gracefully")
	return nil
}
