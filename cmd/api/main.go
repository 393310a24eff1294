package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexpravo/intake-api/config"
	"github.com/lexpravo/intake-api/internal/cache"
	"github.com/lexpravo/intake-api/internal/drafts"
	"github.com/lexpravo/intake-api/internal/files"
	"github.com/lexpravo/intake-api/internal/handlers"
	"github.com/lexpravo/intake-api/internal/middleware"
	"github.com/lexpravo/intake-api/internal/repository"
	"github.com/lexpravo/intake-api/internal/services"
	"github.com/lexpravo/intake-api/internal/telegram"
	"github.com/lexpravo/intake-api/pkg/db"
	"github.com/lexpravo/intake-api/pkg/httpclient"
	"github.com/lexpravo/intake-api/pkg/jwt"
	"github.com/lexpravo/intake-api/pkg/logger"
	"github.com/lexpravo/intake-api/pkg/metrics"
	"github.com/lexpravo/intake-api/pkg/profiling"
	"github.com/lexpravo/intake-api/pkg/storage"
	"github.com/lexpravo/intake-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerWizardRoutes registers the Mini App intake surface: the draft
// lifecycle, file staging, submission and the category catalogue
func registerWizardRoutes(
	group *gin.RouterGroup,
	cfg *config.Config,
	generalRateLimiter, submitRateLimiter, uploadRateLimiter *middleware.RateLimiter,
	draftHandler *handlers.DraftHandler,
	intakeHandler *handlers.IntakeHandler,
	categoryHandler *handlers.CategoryHandler,
	logsHandler *handlers.LogsHandler,
) {
	telegramAuth := middleware.TelegramAuthMiddleware(cfg.Telegram.BotToken, cfg.Telegram.RequireInitData)

	group.GET("/categories", generalRateLimiter.Middleware(), categoryHandler.GetCategories)

	draft := group.Group("/draft", telegramAuth)
	draft.GET("", generalRateLimiter.Middleware(), draftHandler.GetDraft)
	draft.PUT("", generalRateLimiter.Middleware(), middleware.BodySizeLimit(100*1024), draftHandler.SaveDraft)
	draft.DELETE("", generalRateLimiter.Middleware(), draftHandler.DeleteDraft)
	draft.POST("/advance", generalRateLimiter.Middleware(), draftHandler.Advance)
	draft.POST("/retreat", generalRateLimiter.Middleware(), draftHandler.Retreat)
	// File payloads travel base64-encoded; the cap leaves headroom over the
	// raw per-file limit times the slot count
	fileBodyCap := cfg.Wizard.MaxFileSizeBytes * int64(cfg.Wizard.MaxFiles) * 2
	draft.POST("/files", uploadRateLimiter.Middleware(), middleware.BodySizeLimit(fileBodyCap), draftHandler.StageFiles)
	draft.DELETE("/files/:id", generalRateLimiter.Middleware(), draftHandler.RemoveFile)

	group.POST("/submit", submitRateLimiter.Middleware(), middleware.BodySizeLimit(fileBodyCap), telegramAuth, intakeHandler.Submit)
	group.POST("/notify-client", submitRateLimiter.Middleware(), middleware.BodySizeLimit(100*1024), telegramAuth, intakeHandler.NotifyClient)
	group.POST("/logs", generalRateLimiter.Middleware(), middleware.BodySizeLimit(1*1024*1024), logsHandler.ReceiveFrontendLogs)
}

// registerAdminRoutes registers staff dashboard routes for authentication,
// application triage, clients and payments
func registerAdminRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authRateLimiter *middleware.RateLimiter,
	generalRateLimiter *middleware.RateLimiter,
	adminAuthHandler *handlers.AdminAuthHandler,
	adminHandler *handlers.AdminHandler,
	tokenManager *jwt.TokenManager,
) {
	// Skip staff routes if JWT is not configured
	if tokenManager == nil {
		logger.Warn("Staff dashboard routes disabled: JWT_SECRET not configured")
		return
	}

	session := middleware.AdminSessionMiddleware(tokenManager, cfg.AdminSession.CookieDomain, cfg.AdminSession.CookieSecure)

	auth := router.Group("/api/v1/auth/admin")
	auth.POST("/login", authRateLimiter.Middleware(), adminAuthHandler.Login)
	auth.POST("/logout", adminAuthHandler.Logout)
	auth.GET("/session", session, adminAuthHandler.GetSession)

	admin := router.Group("/api/v1/admin")
	admin.Use(generalRateLimiter.Middleware(), session)

	admin.GET("/applications", adminHandler.ListApplications)
	admin.GET("/applications/:id", adminHandler.GetApplication)
	admin.POST("/applications/:id/status", adminHandler.UpdateApplicationStatus)
	admin.GET("/clients", adminHandler.ListClients)
	admin.GET("/payments", adminHandler.ListPayments)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting intake API",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.CollectorEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling (no-op unless enabled)
	profilerStop, err := profiling.InitProfiler(
		profiling.Config{
			Enabled:               cfg.Profiling.Enabled,
			Endpoint:              cfg.Profiling.Endpoint,
			AppName:               cfg.Profiling.AppName,
			SampleTypes:           cfg.Profiling.SampleTypes,
			UploadIntervalSeconds: cfg.Profiling.UploadIntervalSeconds,
		},
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
	)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer pool.Close()

	// NOTE: Database migrations run separately via the migrate command

	// Object storage for attachments. Without credentials the wizard still
	// works: files are staged as metadata only.
	var storageClient *storage.Client
	if cfg.ObjectStorage.AccessKeyID != "" && cfg.ObjectStorage.SecretAccessKey != "" {
		storageClient, err = storage.NewClient(
			cfg.ObjectStorage.AccessKeyID,
			cfg.ObjectStorage.SecretAccessKey,
			cfg.ObjectStorage.BucketName,
			cfg.ObjectStorage.Endpoint,
			cfg.ObjectStorage.Region,
		)
		if err != nil {
			logger.Fatal("Failed to initialize object storage client", zap.Error(err))
		}
	} else {
		logger.Warn("Object storage credentials not set - attachments will not be persisted to storage")
	}

	// Repositories
	applicationRepo := repository.NewApplicationRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)

	// Category cache is populated synchronously before the container is
	// marked healthy
	categoryCache := cache.NewCategoryCache(categoryRepo.FetchAll, cfg.Cache.CategoryTTLSeconds)
	if err := categoryCache.Initialize(); err != nil {
		logger.Fatal("Failed to initialize category cache", zap.Error(err))
	}

	// Telegram notifier (optional)
	var notifier services.NotifierInterface
	if cfg.Telegram.BotToken != "" && cfg.Telegram.AdminChatID != 0 {
		tgNotifier, err := telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
		if err != nil {
			logger.Fatal("Failed to initialize telegram notifier", zap.Error(err))
		}
		notifier = tgNotifier
	} else {
		logger.Warn("Telegram notifications disabled: bot token or admin chat id not set")
	}

	// HTTP client for external API calls
	httpClient := httpclient.NewStandardClient()

	// Wizard infrastructure
	draftStore := drafts.NewStore(time.Duration(cfg.Wizard.DraftTTLHours) * time.Hour)
	var uploader files.Uploader
	if storageClient != nil {
		uploader = storageClient
	}
	fileIntake := files.NewIntake(uploader, files.Limits{
		MaxFiles:     cfg.Wizard.MaxFiles,
		MaxSizeBytes: cfg.Wizard.MaxFileSizeBytes,
	})

	// Services
	categoryService := services.NewCategoryService(categoryCache)
	wizardService := services.NewWizardService(draftStore, fileIntake, categoryService)
	intakeService := services.NewIntakeService(applicationRepo, paymentRepo, categoryService, draftStore, fileIntake, notifier, cfg, httpClient)
	adminService := services.NewAdminService(applicationRepo, clientRepo, paymentRepo)
	adminAuthService := services.NewAdminAuthService(cfg)

	// Handlers
	draftHandler := handlers.NewDraftHandler(wizardService)
	intakeHandler := handlers.NewIntakeHandler(intakeService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	adminHandler := handlers.NewAdminHandler(adminService)
	adminAuthHandler := handlers.NewAdminAuthHandler(adminAuthService)
	healthHandler := handlers.NewHealthHandler(categoryCache.IsReady, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(ctx)
	})
	logsHandler := handlers.NewLogsHandler(cfg.Logging.Dir)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS configuration - SECURITY: Only allow specific origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.InitDataHeader, handlers.SessionHeader, "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for staff session cookies
		MaxAge:           12 * time.Hour,
	}))

	// SECURITY: Rate limiters to prevent abuse and DoS attacks
	generalRateLimiter := middleware.NewRateLimiter(100, 200)  // 100 req/sec, burst of 200
	submitRateLimiter := middleware.NewRateLimiter(2, 5)       // 2 req/sec, burst of 5 (prevent spam submissions)
	uploadRateLimiter := middleware.NewRateLimiter(5, 10)      // 5 req/sec, burst of 10
	authRateLimiter := middleware.NewRateLimiter(0.00667, 3)   // 2 req/5min, burst of 3 (login abuse prevention)

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// API v1 routes
	v1 := router.Group("/api/v1")
	registerWizardRoutes(v1, cfg, generalRateLimiter, submitRateLimiter, uploadRateLimiter,
		draftHandler, intakeHandler, categoryHandler, logsHandler)

	// Staff dashboard routes
	registerAdminRoutes(router, cfg, authRateLimiter, generalRateLimiter, adminAuthHandler, adminHandler, adminAuthService.GetTokenManager())

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // SECURITY: 1 MB max header size
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
