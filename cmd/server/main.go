package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/S-FX-com/Enque-Backend/api/handlers"
	"github.com/S-FX-com/Enque-Backend/api/middleware"
	"github.com/S-FX-com/Enque-Backend/internal/config"
	"github.com/S-FX-com/Enque-Backend/internal/db"
	"github.com/S-FX-com/Enque-Backend/internal/ratelimit"
	"github.com/S-FX-com/Enque-Backend/internal/realtime"
	"github.com/S-FX-com/Enque-Backend/internal/repository"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create database directory")
	}

	// Initialize database
	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.CloseDB()

	// Initialize repositories
	ticketRepo := repository.NewTicketRepository(database)
	commentRepo := repository.NewCommentRepository(database)

	// Initialize realtime layer
	rtManager := realtime.NewManager(logger)
	defer rtManager.Close()
	rtHandler := realtime.NewHandler(rtManager, logger)

	// Initialize rate limit store: redis when configured so the whole
	// fleet shares counters, in-process otherwise.
	var limitStore ratelimit.Store
	if cfg.RedisURL != "" {
		redisStore, err := ratelimit.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		limitStore = redisStore
		logger.Info().Msg("rate limiting backed by redis")
	} else {
		limitStore = ratelimit.NewMemoryStore()
		logger.Warn().Msg("REDIS_URL not set, rate limit counters are per-process")
	}
	limiter := ratelimit.NewLimiter(limitStore, logger)

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(ticketRepo, rtManager, logger)
	commentHandler := handlers.NewCommentHandler(commentRepo, ticketRepo, rtManager, logger)
	realtimeHandler := handlers.NewRealtimeHandler(rtHandler)

	// Initialize Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Metrics endpoint (for Prometheus scraping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes, rate limited per route class
	api := r.Group("/api")
	{
		read := api.Group("")
		read.Use(ratelimit.Middleware(limiter, ratelimit.PolicyRead))

		write := api.Group("")
		write.Use(ratelimit.Middleware(limiter, ratelimit.PolicyWrite))

		ticketHandler.RegisterRoutes(read, write)
		commentHandler.RegisterRoutes(read, write)

		// The upgrade request itself passes through the general policy.
		ws := api.Group("")
		ws.Use(ratelimit.Middleware(limiter, ratelimit.PolicyGeneral))
		realtimeHandler.RegisterRoutes(ws)
	}

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting enque server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}

	rtManager.Close()
	logger.Info().Msg("server stopped")
}
