package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mergington-api/internal/catalog"
	"github.com/noah-isme/mergington-api/internal/config"
	"github.com/noah-isme/mergington-api/internal/database"
	"github.com/noah-isme/mergington-api/internal/handler"
	"github.com/noah-isme/mergington-api/internal/middleware"
	"github.com/noah-isme/mergington-api/internal/models"
	"github.com/noah-isme/mergington-api/internal/repository"
	"github.com/noah-isme/mergington-api/internal/router"
	"github.com/noah-isme/mergington-api/internal/service"
)

func main() {
	startedAt := time.Now().UTC()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	validate := validator.New(validator.WithRequiredStructEnabled())

	loader, err := catalog.NewLoader(validate)
	if err != nil {
		log.Fatalf("failed to prepare catalog loader: %v", err)
	}
	activities, err := loader.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load activity catalog: %v", err)
	}

	activityRepo, err := repository.NewActivityRepository(activities)
	if err != nil {
		log.Fatalf("failed to seed activity registry: %v", err)
	}
	logger.Info().Int("activities", len(activities)).Msg("activity registry seeded")

	db, driver, err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to connect to audit database: %v", err)
	}
	if err := db.AutoMigrate(&models.RosterChange{}); err != nil {
		log.Fatalf("failed to migrate audit database: %v", err)
	}
	logger.Info().Str("driver", driver).Msg("roster audit log ready")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	publisher := service.NewRosterPublisher(redisClient, natsConn, cfg.EventsChannel, logger)

	activityService := service.NewActivityService(activityRepo, validate, logger, service.ActivityServiceConfig{
		Audit:        repository.NewRosterChangeRepository(db),
		Publisher:    publisher,
		HistoryLimit: cfg.HistoryLimit,
	})
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AccessLog: cfg.AppEnv == "development"})
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler: activityHandler,
		SignupLimiter:   middleware.RateLimit("roster", cfg.RateLimitMax, cfg.RateLimitWindow),
		StartedAt:       startedAt,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
