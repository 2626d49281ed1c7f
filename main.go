package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"ms-booking/internal/allocation"
	"ms-booking/internal/analytics"
	analytics_api "ms-booking/internal/analytics/api"
	"ms-booking/internal/api"
	"ms-booking/internal/auth"
	"ms-booking/internal/config"
	"ms-booking/internal/database"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/events"
	"ms-booking/internal/kafka"
	"ms-booking/internal/lock"
	"ms-booking/internal/logger"
	"ms-booking/internal/resources"
	"ms-booking/internal/store"
	"ms-booking/internal/users"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
)

func prepareSchema(ctx context.Context, cfg config.DatabaseConfig, db *bun.DB, log *logger.Logger) error {
	if !cfg.AutoMigrate {
		log.Info("MIGRATION", "Auto-migration disabled")
		return nil
	}
	if cfg.Driver == database.DriverPostgres {
		runner := migrations.NewRunner(cfg.DSN, log)
		defer runner.Close()
		return runner.RunMigrations()
	}
	return store.CreateSchema(ctx, db)
}

func newLocker(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (lock.Locker, func()) {
	if !cfg.Enabled {
		log.Info("LOCK", "Using in-process resource locks")
		return lock.NewLocal(cfg.LockWait), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Addr, cfg.DB))
	return lock.NewRedis(client, cfg.LockTTL, cfg.LockWait, log), func() { client.Close() }
}

func newPublisher(cfg config.KafkaConfig, log *logger.Logger) (kafka.Publisher, func()) {
	if !cfg.Enabled {
		log.Info("KAFKA", "Kafka disabled, domain events are not published")
		return kafka.NopPublisher{}, func() {}
	}

	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers %v", cfg.Brokers))
	if err := kafka.EnsureTopicsExist(cfg.Brokers, append(cfg.Topics.All(), cfg.Topics.UserDeleted), log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}
	producer := kafka.NewProducer(cfg.Brokers, log)
	return producer, func() { producer.Close() }
}

func tokenVerifiers(ctx context.Context, cfg config.AuthConfig, tokens *auth.HMACTokens, log *logger.Logger) []auth.TokenVerifier {
	verifiers := []auth.TokenVerifier{tokens}
	if cfg.OIDCIssuer == "" {
		return verifiers
	}
	oidcVerifier, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
	if err != nil {
		log.Fatal("AUTH", err.Error())
	}
	log.Info("AUTH", fmt.Sprintf("Accepting ID tokens from %s", cfg.OIDCIssuer))
	return append(verifiers, oidcVerifier)
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Close()

	log.Info("APP", "Starting Booking Service initialization")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	if cfg.Auth.JWTSecret == "change-me" {
		log.Warn("CONFIG", "JWT_SECRET is the default value, set it outside development")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer db.Close()

	if err := prepareSchema(ctx, cfg.Database, db, log); err != nil {
		log.Fatal("MIGRATION", err.Error())
	}

	locks, closeLocks := newLocker(ctx, cfg.Redis, log)
	defer closeLocks()

	publisher, closePublisher := newPublisher(cfg.Kafka, log)
	defer closePublisher()

	st := store.New(db)
	topics := cfg.Kafka.Topics
	manager := allocation.NewManager(st, locks, publisher, topics, log)
	userService := users.NewService(st, log)

	if cfg.Auth.AdminUsername != "" {
		if _, err := userService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			log.Fatal("USER", fmt.Sprintf("Failed to seed admin account: %v", err))
		}
	}

	tokens := auth.NewHMACTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler := &api.Handler{
		Events:      events.NewService(st, manager, publisher, topics, log),
		Resources:   resources.NewService(st, publisher, topics, log),
		Allocations: manager,
		Users:       userService,
		Reports:     analytics_api.NewHandler(analytics.NewReporter(st, log), log),
		Tokens:      tokens,
		Logger:      log,
	}
	authenticate := auth.Middleware(st.Queries(), log, tokenVerifiers(ctx, cfg.Auth, tokens, log)...)

	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topics.UserDeleted, cfg.Kafka.GroupID, log)
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx, userService.HandleUserDeleted); err != nil {
				log.Error("KAFKA", fmt.Sprintf("User deletion consumer stopped: %v", err))
			}
		}()
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler.Router(authenticate),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Booking Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Booking Service shutdown complete")
	}
}

