package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/shuttleclub/doubles-server/config"
	"github.com/shuttleclub/doubles-server/db"
	"github.com/shuttleclub/doubles-server/handlers"
	"github.com/shuttleclub/doubles-server/relay"
	"github.com/shuttleclub/doubles-server/repositories"
	api "github.com/shuttleclub/doubles-server/routes"
	"github.com/shuttleclub/doubles-server/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.EnsureSchema(context.Background(), dbConn); err != nil {
		logger.Error("failed to ensure database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema ready")

	// The relay hub lives for the whole process; hubCtx tears it down on
	// shutdown.
	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	hub := relay.NewHub(logger)
	go hub.Run(hubCtx)
	logger.Info("sync relay started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("repositories initialized")

	tournamentService := services.NewTournamentService(
		dbConn,
		tournamentRepo,
		playerRepo,
		matchRepo,
		cfg.AutoFinalizeAfter,
		logger,
	)
	logger.Info("services initialized")

	// Background sweeper: finalize tournaments abandoned past the threshold
	// so they cannot hold the single-active slot forever.
	go func() {
		ticker := time.NewTicker(cfg.FinalizeSweepInterval)
		defer ticker.Stop()
		logger.Info("auto-finalize sweeper started",
			slog.Duration("interval", cfg.FinalizeSweepInterval),
			slog.Duration("threshold", cfg.AutoFinalizeAfter))

		if err := tournamentService.AutoFinalizeStale(context.Background()); err != nil {
			logger.Error("sweeper: initial run failed", slog.Any("error", err))
		}
		for range ticker.C {
			if err := tournamentService.AutoFinalizeStale(context.Background()); err != nil {
				logger.Error("sweeper: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, tournamentHandler, webSocketHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
