package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sileme/sileme/internal/api"
	"github.com/sileme/sileme/internal/config"
	"github.com/sileme/sileme/internal/db"
	"github.com/sileme/sileme/internal/logging"
	"github.com/sileme/sileme/internal/security"
	"github.com/sileme/sileme/internal/services"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	location := mustLoadLocation(cfg.TimeZone)
	time.Local = location

	logger := logging.New(cfg.LogLevel, cfg.LogPath)
	defer func() { _ = logger.Sync() }()

	secretKey := cfg.SecretKey
	if secretKey == "" {
		generated, err := security.GenerateSecretKey()
		if err != nil {
			logger.Fatal("secret key generation failed", zap.Error(err))
		}
		secretKey = generated
		logger.Warn("SECRET_KEY not set, using a generated key; tokens will not survive a restart")
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	repositories := db.NewRepositories(database)

	var sink services.DeliverySink
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancelPing()
			logger.Fatal("redis connect failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cancelPing()
		sink = services.NewRedisDeliverySink(redisClient)
		logger.Info("realtime delivery via redis", zap.String("addr", cfg.RedisAddr))
	} else {
		sink = services.NewMemoryDeliverySink()
		logger.Warn("REDIS_ADDR not set, realtime events stay in-process")
	}

	notificationStore := services.NewNotificationStore(
		repositories.Notifications,
		repositories.Users,
		services.NotificationStoreConfig{
			Location:   location,
			ExpiryDays: cfg.NotificationExpiryDays,
		},
	)
	checkInService := services.NewCheckInService(
		repositories.CheckIns,
		repositories.Users,
		notificationStore,
		sink,
		services.CheckInServiceConfig{
			Location:      location,
			NoteMaxLength: cfg.NoteMaxLength,
			TagMaxCount:   cfg.TagMaxCount,
		},
		logger,
	)
	authService := services.NewAuthService(repositories.Users, nil)
	settingsService := services.NewSettingsService(repositories.Users)
	reportService := services.NewReportService(
		repositories.CheckIns,
		repositories.Users,
		notificationStore,
		services.ReportServiceConfig{Location: location},
	)
	contactService := services.NewContactService(repositories.Contacts)
	dataService := services.NewDataService(
		repositories.CheckIns,
		repositories.Notifications,
		repositories.Contacts,
		repositories.Users,
	)

	scheduler := services.NewScheduler(
		notificationStore,
		checkInService,
		repositories.Users,
		sink,
		services.SchedulerConfig{
			Location:         location,
			DispatchInterval: cfg.DispatchInterval,
			CleanupTime:      cfg.CleanupTime,
			ReminderTime:     cfg.ReminderTime,
		},
		logger,
	)

	handler := api.NewHandler(api.HandlerDeps{
		Auth:          authService,
		Settings:      settingsService,
		CheckIns:      checkInService,
		Notifications: notificationStore,
		Reports:       reportService,
		Contacts:      contactService,
		Data:          dataService,
		SecretKey:     secretKey,
		Location:      location,
		Logger:        logger,
	})

	app := fiber.New(fiber.Config{
		AppName:               "Sileme",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())
	api.RegisterRoutes(app, handler)

	lifecycleCtx, cancelLifecycle := context.WithCancel(context.Background())
	defer cancelLifecycle()
	scheduler.Start(lifecycleCtx)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		scheduler.Stop()
		cancelLifecycle()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("sileme listening",
		zap.String("port", cfg.Port),
		zap.String("db", cfg.DBPath),
		zap.String("tz", location.String()),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}
