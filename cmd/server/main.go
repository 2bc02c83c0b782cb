package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fincoach/internal/agents"
	"fincoach/internal/config"
	"fincoach/internal/database"
	"fincoach/internal/handlers"
	"fincoach/internal/middleware"
	"fincoach/internal/ocr"
	"fincoach/internal/repositories"
	"fincoach/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}

	recorder := services.NewPrometheusMetrics()

	// Reasoning agent coordinator; without an API key every agent serves
	// its deterministic fallback
	var coordinator services.AgentCoordinatorInterface
	client, err := agents.NewOpenRouterClient(cfg.OpenRouter.APIKey, logger,
		agents.WithModel(cfg.OpenRouter.Model),
		agents.WithBaseURL(cfg.OpenRouter.BaseURL),
		agents.WithTemperature(cfg.OpenRouter.Temperature),
	)
	if err != nil {
		logger.Warn("OpenRouter client unavailable, agents will use fallback outputs", "error", err)
		coordinator = agents.NewCoordinator(nil, logger)
	} else {
		coordinator = agents.NewCoordinator(client, logger)
	}

	extractor := services.NewExtractorService(logger, recorder)
	categorizer := services.NewCategorizerService(logger, recorder)
	metricsEngine := services.NewMetricsEngine(logger, categorizer)
	validationEngine := services.NewValidationEngine(logger)
	analysisRepo := repositories.NewAnalysisRepository(db)
	provider := ocr.NewClient(cfg.OCR.ServiceURL, logger)

	analysisService := services.NewAnalysisService(
		provider,
		extractor,
		categorizer,
		metricsEngine,
		validationEngine,
		coordinator,
		analysisRepo,
		recorder,
		logger,
	)

	analysisHandler := handlers.NewAnalysisHandler(analysisService, cfg.Server.MaxUploadBytes)
	healthHandler := handlers.NewHealthCheckHandler(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitPerSecond*2))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	v1 := e.Group("/api/v1")
	v1.POST("/analyze", analysisHandler.Analyze)
	v1.GET("/analyses", analysisHandler.ListAnalyses)
	v1.GET("/analyses/:id", analysisHandler.GetAnalysis)

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting server", "addr", server.Addr, "environment", cfg.Server.Environment)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("server exited")
}
