package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/community_alerts/internal/assistant"
	"github.com/shenikar/community_alerts/internal/auth"
	"github.com/shenikar/community_alerts/internal/config"
	"github.com/shenikar/community_alerts/internal/geocode"
	v1 "github.com/shenikar/community_alerts/internal/handler/http/v1"
	"github.com/shenikar/community_alerts/internal/repository"
	"github.com/shenikar/community_alerts/internal/service"
	"github.com/shenikar/community_alerts/internal/webhook"
	"github.com/shenikar/community_alerts/pkg/logger"
	"github.com/shenikar/community_alerts/pkg/postgres"
	redisclient "github.com/shenikar/community_alerts/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/community_alerts/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Community Alerts API
// @version 1.0
// @description Community safety alerts: live feed, votes, comments, resolution and location checks.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey GuestSession
// @in header
// @name X-Guest-Session
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация издателя и воркера вебхуков
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg)
	workerDone := webhookWorker.Start(ctx)

	// Инициализация репозиториев
	alertRepo := repository.NewAlertRepository(dbpool, redisClient, log)
	locationRepo := repository.NewLocationCheckRepository(dbpool)
	settingsRepo := repository.NewSettingsRepository(redisClient)

	// Контроллер алертов держит живую подписку на снимки
	alertService := service.NewAlertController(alertRepo, log)
	if err := alertService.Start(ctx); err != nil {
		log.Fatalf("Failed to start alert subscription: %v", err)
	}
	defer alertService.Stop()

	locationService := service.NewLocationService(alertService, locationRepo, settingsRepo, webhookPublisher, log, cfg)

	// Внешние сервисы
	geocoder := geocode.NewClient(cfg, redisClient, log)
	aiAssistant := assistant.New(cfg, log)

	// Аутентификация
	guestSessions, err := auth.NewGuestSessions(cfg.GuestSessionSecret, cfg.GuestSessionSalt)
	if err != nil {
		log.Fatalf("Failed to init guest sessions: %v", err)
	}
	authenticator := auth.NewAuthenticator(auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer), guestSessions)

	// Инициализация хэндлеров
	handler := v1.NewHandler(alertService, locationService, geocoder, aiAssistant, authenticator, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Метрики Prometheus и Swagger UI
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Останавливаем воркер и ждем, пока он дочитает текущее событие
	cancel()
	<-workerDone

	log.Info("Server gracefully stopped")
}
