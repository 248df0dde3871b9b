package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/arzan03/DineRate/internal/auth"
	"github.com/arzan03/DineRate/internal/config"
	"github.com/arzan03/DineRate/internal/db"
	"github.com/arzan03/DineRate/internal/handlers"
	"github.com/arzan03/DineRate/internal/metrics"
	"github.com/arzan03/DineRate/internal/middleware"
	"github.com/arzan03/DineRate/internal/services"
	"github.com/arzan03/DineRate/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := db.ConnectMongoDB(ctx, cfg.MongoURI, log)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn("mongo disconnect failed", slog.String("error", err.Error()))
		}
	}()

	database := client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		return err
	}
	users := db.NewUserStore(database)
	restaurants := db.NewRestaurantStore(database)

	media, err := storage.NewMediaStore(ctx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		Bucket:    cfg.MinioBucket,
	}, log)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL, cfg.ResetTokenTTL)
	if err != nil {
		return err
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	authService := services.NewAuthService(users, hasher, tokens, log)
	profileService := services.NewProfileService(users, media, log)
	restaurantService := services.NewRestaurantService(restaurants, users, media, cfg.ListingWorkers, log)

	app := fiber.New(fiber.Config{
		AppName:      "dinerate",
		ErrorHandler: handlers.ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSAllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, token",
	}))
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	handlers.Routes{
		Auth:        handlers.NewAuthHandler(authService, cfg.SessionTTL, cfg.ExposeResetToken, log),
		Profile:     handlers.NewProfileHandler(profileService, log),
		Restaurants: handlers.NewRestaurantHandler(restaurantService, log),
		RequireAuth: middleware.AuthMiddleware(authService),
	}.Mount(app.Group("/api"))

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("addr", cfg.Addr()), slog.String("environment", cfg.Environment))
		errCh <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
