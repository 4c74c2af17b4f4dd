package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-tracker/config"
	"github.com/Dosada05/tournament-tracker/courtboard"
	"github.com/Dosada05/tournament-tracker/db"
	"github.com/Dosada05/tournament-tracker/handlers"
	"github.com/Dosada05/tournament-tracker/repositories"
	"github.com/Dosada05/tournament-tracker/repositories/memory"
	api "github.com/Dosada05/tournament-tracker/routes"
	"github.com/Dosada05/tournament-tracker/services"
	"github.com/Dosada05/tournament-tracker/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.Bool("export_enabled", cfg.ExportEnabled()))

	if err := run(cfg, logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, dbConn, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	if dbConn != nil {
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
	}

	var exports storage.ObjectStore
	if cfg.ExportEnabled() {
		exports, err = storage.NewR2Store(ctx, storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 store: %w", err)
		}
		logger.Info("Cloudflare R2 export store initialized", slog.String("bucket", cfg.R2BucketName))
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	wsHub := courtboard.NewHub()
	go wsHub.Run(hubCtx)
	logger.Info("court board hub started")

	allocator := services.NewCourtAllocator(repos.Courts, time.Now, logger)
	matchService := services.NewMatchService(services.MatchServiceDeps{
		Matches:       repos.Matches,
		Registrations: repos.Registrations,
		Players:       repos.Players,
		Transactor:    repos.Transactor,
		Allocator:     allocator,
		Validator:     services.NewResultValidator(),
		Broadcaster:   wsHub,
		Logger:        logger,
		Now:           time.Now,
	})
	tournamentService := services.NewTournamentService(repos.Tournaments, repos.Courts, logger, time.Now)
	playerService := services.NewPlayerService(repos.Players)
	authService := services.NewAuthService(repos.Users)
	exportService := services.NewExportService(matchService, exports, logger)

	var pinger handlers.Pinger
	if dbConn != nil {
		pinger = dbConn
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Health:     handlers.NewHealthHandler(pinger, logger),
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey, logger),
		Tournament: handlers.NewTournamentHandler(tournamentService, matchService, exportService, logger),
		Player:     handlers.NewPlayerHandler(playerService, logger),
		Match:      handlers.NewMatchHandler(matchService, logger),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins),
	}, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         logger,
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	stopHub()
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}

// openStore builds the repositories for the configured driver. The returned *sql.DB is nil
// for the memory driver.
func openStore(cfg *config.Config, logger *slog.Logger) (*repositories.Repositories, *sql.DB, error) {
	if cfg.StorageDriver == config.DriverMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		return memory.NewStore().Repositories(), nil, nil
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, db.PoolConfig{
		MaxConns:        cfg.DBMaxConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		PingTimeout:     5 * time.Second,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")

	version, err := db.Migrate(dbConn)
	if err != nil {
		dbConn.Close()
		return nil, nil, err
	}
	logger.Info("database schema up to date", slog.Uint64("version", uint64(version)))

	return repositories.NewPostgresRepositories(dbConn, logger), dbConn, nil
}
