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
	"github.com/snapfest/luckydraw/config"
	"github.com/snapfest/luckydraw/db"
	"github.com/snapfest/luckydraw/handlers"
	"github.com/snapfest/luckydraw/live"
	"github.com/snapfest/luckydraw/repositories"
	api "github.com/snapfest/luckydraw/routes"
	"github.com/snapfest/luckydraw/services"
	"github.com/snapfest/luckydraw/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
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

	// Архиватор результатов (опционально)
	var archiver storage.ResultArchiver
	if cfg.R2AccountID != "" {
		archiver, err = storage.NewCloudflareR2Archiver(storage.CloudflareR2ArchiverConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
		})
		if err != nil {
			logger.Error("failed to initialize result archiver", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 result archiver initialized")
	} else {
		logger.Info("result archiving disabled (no R2 configuration)")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	entryRepo := repositories.NewPostgresEntryRepository(dbConn)
	configRepo := repositories.NewPostgresConfigRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	drawLocker := repositories.NewPostgresDrawLocker(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	entryService := services.NewEntryService(entryRepo, configRepo)
	configService := services.NewConfigService(dbConn, configRepo, resultRepo)
	drawService := services.NewDrawService(configRepo, entryRepo, resultRepo, drawLocker, wsHub, archiver, logger)
	ledgerService := services.NewLedgerService(resultRepo, logger)
	statsService := services.NewStatsService(entryRepo, resultRepo)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	entryHandler := handlers.NewEntryHandler(entryService)
	configHandler := handlers.NewConfigHandler(configService)
	drawHandler := handlers.NewDrawHandler(drawService, ledgerService)
	statsHandler := handlers.NewStatsHandler(statsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		entryHandler,
		configHandler,
		drawHandler,
		statsHandler,
		webSocketHandler,
		[]byte(cfg.JWTSecretKey),
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
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

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
