// @title           Hospital System API
// @version         1.0
// @description     Patient, admin and doctor accounts with appointment booking and review.
// @host            localhost:4000
// @BasePath        /api/v1
// @securityDefinitions.apikey AdminCookie
// @in              header
// @name            adminToken
// @securityDefinitions.apikey PatientCookie
// @in              header
// @name            patientToken
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/medicare/hospital-system/docs"
	"github.com/medicare/hospital-system/internal/api"
	"github.com/medicare/hospital-system/internal/api/handler"
	"github.com/medicare/hospital-system/internal/core/ports"
	"github.com/medicare/hospital-system/internal/core/service"
	"github.com/medicare/hospital-system/internal/infrastructure/asset"
	"github.com/medicare/hospital-system/internal/infrastructure/db/mongo"
	"github.com/medicare/hospital-system/internal/infrastructure/db/redis"
	"github.com/medicare/hospital-system/internal/infrastructure/queue"
	"github.com/medicare/hospital-system/internal/observability"
	"github.com/medicare/hospital-system/internal/pkg/config"
	"github.com/medicare/hospital-system/pkg/logger"
)

func main() {
	cfg := config.MustLoad()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: cfg.Telemetry.ServiceName,
	})

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracer")
	}

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	accounts := mongo.NewAccountRepository(db)
	appointments := mongo.NewAppointmentRepository(db)
	if err := mongo.EnsureIndexes(ctx, accounts, appointments); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	redisClient, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	sessions := redis.NewSessionStore(redisClient)

	uploader := newUploader(cfg)

	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, queue.NewLogNotifier(log), log)
	dispatcher.Start(ctx)

	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpireDays)
	authSvc := service.NewAuthService(accounts, uploader, tokens, sessions, log)
	apptSvc := service.NewAppointmentService(appointments, accounts, dispatcher, log)

	e := api.NewRouter(
		api.Services{Accounts: authSvc, Appointments: apptSvc},
		api.Options{
			Tokens:      tokens,
			Revocations: sessions,
			Health: map[string]handler.Pinger{
				"mongodb": handler.PingFunc(func(ctx context.Context) error {
					return mongo.Ping(ctx, mongoClient)
				}),
				"redis": handler.PingFunc(func(ctx context.Context) error {
					return redisClient.Ping(ctx).Err()
				}),
			},
			AllowedOrigins:   cfg.AllowedOrigins(),
			CookieExpireDays: cfg.Auth.CookieExpireDays,
			MaxAvatarBytes:   cfg.Assets.MaxAvatarBytes,
			Logger:           log,
		},
	)

	srv := api.NewServer(":"+cfg.Port, e)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("notification queue did not drain")
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect failed")
	}
	if err := redisClient.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}

	log.Info().Msg("shutdown complete")
}

// newUploader returns the Cloudinary uploader, or one that refuses every
// upload when no account is configured.
func newUploader(cfg *config.Config) ports.AssetUploader {
	log := logger.Get()
	if cfg.Assets.CloudinaryURL == "" {
		log.Warn().Msg("CLOUDINARY_URL not set, doctor registration is disabled")
		return asset.Disabled{}
	}
	u, err := asset.NewCloudinaryUploader(cfg.Assets.CloudinaryURL, cfg.Assets.Folder)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init cloudinary")
	}
	return u
}
