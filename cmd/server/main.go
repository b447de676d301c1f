package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/practice-service/internal/cache"
	"github.com/prepflow/practice-service/internal/config"
	"github.com/prepflow/practice-service/internal/events"
	"github.com/prepflow/practice-service/internal/handlers"
	"github.com/prepflow/practice-service/internal/llm"
	"github.com/prepflow/practice-service/internal/repositories/postgres"
	"github.com/prepflow/practice-service/internal/services"
	"github.com/prepflow/practice-service/internal/utils"
	"github.com/prepflow/practice-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	if cfg.Environment != "production" {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	logger := utils.NewSlogLogger(slogger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	repo := postgres.NewRepository(db)
	defer repo.Close()

	var cacheService cache.CacheService = cache.NopCache{}
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", "error", err)
		} else {
			cacheService = cache.NewRedisCache(redisClient, slogger)
			defer redisClient.Close()
		}
	}

	var publisher events.EventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: cfg.KafkaBrokers,
			TopicName:    cfg.KafkaTopic,
			Logger:       slogger,
		})
		if err != nil {
			logger.Error("failed to create event publisher", "error", err)
			os.Exit(1)
		}
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
	}

	var completer llm.ChatCompleter
	if cfg.LLMAPIKey != "" {
		completer = llm.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	} else {
		logger.Warn("no LLM API key configured, using scripted assistant")
		completer = llm.NewScriptedCompleter(llm.DefaultOnboardingScript, 0)
	}

	validator := utils.NewValidator()
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      repo,
		Cache:     cacheService,
		Publisher: publisher,
		Completer: completer,
		Checkout:  services.NewHostedCheckout(cfg.CheckoutBaseURL),
		Logger:    logger,
		Validator: validator,
	})
	defer serviceManager.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}
