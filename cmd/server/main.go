package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/salonbook/salon-api/docs" // swagger docs

	"github.com/salonbook/salon-api/internal/api"
	"github.com/salonbook/salon-api/internal/api/handler"
	"github.com/salonbook/salon-api/internal/core/ports"
	"github.com/salonbook/salon-api/internal/core/service"
	mongodb "github.com/salonbook/salon-api/internal/infrastructure/db/mongo"
	redisdb "github.com/salonbook/salon-api/internal/infrastructure/db/redis"
	"github.com/salonbook/salon-api/internal/infrastructure/queue"
	"github.com/salonbook/salon-api/internal/infrastructure/storage"
	"github.com/salonbook/salon-api/internal/pkg/config"
	"github.com/salonbook/salon-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title           Salon Booking API
// @version         1.0
// @description     Accounts, slot availability and reservations for a hair salon.
// @BasePath        /api
// @schemes         http https
// @securityDefinitions.apikey TokenAuth
// @in header
// @name x-auth-token
// @description Raw session token returned by register or login.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "salon-api",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	userRepo := mongodb.NewUserRepository(db)
	reservationRepo := mongodb.NewReservationRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, reservationRepo); err != nil {
		return err
	}

	checks := map[string]handler.HealthCheck{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	// --- Redis (optional) ---
	var locker ports.SlotLocker
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

		if cfg.Redis.SlotLockEnabled {
			locker = newSlotLocker(rdb, cfg.Redis.SlotLockTTL, log)
		}
	}

	// --- Payment proof storage ---
	proofs, uploadDir, err := newProofStorage(cfg.Storage)
	if err != nil {
		return err
	}

	// --- Audit events ---
	dispatcher := queue.NewDispatcher(cfg.Booking.EventWorkers, eventRepo, log)
	// Workers outlive the signal context so Stop can drain the queues.
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Stop()

	// --- Services ---
	tokens, err := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	authService := service.NewAuthService(userRepo, tokens, log)
	availability := service.NewAvailabilityService(reservationRepo, cfg.Booking.MaxClientsPerSlot)
	reservationService := service.NewReservationService(reservationRepo, availability, locker, dispatcher, log)

	e := api.NewRouter(api.Deps{
		Auth:         authService,
		Tokens:       authService,
		Reservations: reservationService,
		Proofs:       proofs,
		HealthChecks: checks,
	}, api.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		BodyLimit:        cfg.HTTP.UploadBodyLimit,
		EnforceAdminRole: cfg.HTTP.EnforceAdminRole,
		UploadDir:        uploadDir,
	}, log)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newSlotLocker(rdb *goredis.Client, ttl time.Duration, log zerolog.Logger) ports.SlotLocker {
	log.Info().Dur("ttl", ttl).Msg("slot lock enabled")
	return redisdb.NewSlotLocker(rdb, ttl, log)
}

// newProofStorage returns the configured storage and, for the local driver,
// the directory to serve under /uploads.
func newProofStorage(cfg config.StorageConfig) (ports.ProofStorage, string, error) {
	if cfg.Driver == config.StorageS3 {
		s, err := storage.NewS3Storage(storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		return s, "", err
	}
	s, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, "", err
	}
	return s, s.Dir(), nil
}
