package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sceneit/viewer-relay-go/internal/catalog"
	"github.com/sceneit/viewer-relay-go/internal/config"
	"github.com/sceneit/viewer-relay-go/internal/database"
	"github.com/sceneit/viewer-relay-go/internal/handler"
	"github.com/sceneit/viewer-relay-go/internal/jobs"
	"github.com/sceneit/viewer-relay-go/internal/middleware"
	"github.com/sceneit/viewer-relay-go/internal/redis"
	"github.com/sceneit/viewer-relay-go/internal/relay"
	"github.com/sceneit/viewer-relay-go/internal/repository"
	"github.com/sceneit/viewer-relay-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	vendorRepo := repository.NewVendorProductRepository(db.DB)
	eventRepo := repository.NewPurchaseEventRepository(db.DB)

	hub := relay.NewHub(cfg.RelayAddr())
	if err := hub.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start relay")
	}
	defer hub.Close()

	catalogClient := catalog.NewClient(
		cfg.ShopifyStoreDomain, cfg.ShopifyStorefrontToken, redisClient, config.CatalogCacheTTL,
	)
	if !catalogClient.Configured() {
		log.Warn().Msg("catalog lookups unconfigured, purchases will use vendor store and fallbacks")
	}

	cameraService := service.NewCameraService(hub)
	purchaseService := service.NewPurchaseService(
		hub, vendorRepo, catalogClient, eventRepo, cfg.DuplicateWindow(), cfg.PurchaseKeyTTL(),
	)
	dispatcher := service.NewDispatcher(cameraService, purchaseService)

	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client, cfg.WebhookRateLimitPerMin)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	webhookHandler := handler.NewWebhookHandler(dispatcher)
	statsHandler := handler.NewStatsHandler(hub, eventRepo)
	vendorHandler := handler.NewVendorHandler(vendorRepo)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/vapi", func(r chi.Router) {
		r.Use(rateLimitMiddleware.Handler)
		r.Post("/webhook", webhookHandler.Webhook)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/stats", statsHandler.Stats)
		r.Get("/vendor-products", vendorHandler.List)
		r.Get("/vendor-products/{id}", vendorHandler.Get)
	})

	cleanupJob := jobs.NewCleanupJob(
		eventRepo, purchaseService, cfg.PurchaseEventRetention(), config.CleanupJobInterval,
	)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
