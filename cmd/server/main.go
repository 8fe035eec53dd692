package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/cuervo/adapters/event"
	httpAdapter "github.com/khoahotran/cuervo/adapters/http"
	"github.com/khoahotran/cuervo/adapters/persistence"
	authUC "github.com/khoahotran/cuervo/internal/application/usecase/auth"
	profileUC "github.com/khoahotran/cuervo/internal/application/usecase/profile"
	"github.com/khoahotran/cuervo/internal/application/usecase/share"
	"github.com/khoahotran/cuervo/internal/config"
	"github.com/khoahotran/cuervo/pkg/auth"
	"github.com/khoahotran/cuervo/pkg/logger"
	"github.com/khoahotran/cuervo/pkg/tracing"
)

func main() {
	fmt.Println("Start Cuervo API Server...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: cannot load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "cuervo-api")
	if err != nil {
		appLogger.Fatal("Cannot init tracer provider", err)
	}
	defer tracing.Shutdown(context.Background(), tp, appLogger)

	// Initialize dependencies
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Redis", err)
	}
	defer redisClient.Close()

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	publicCache := persistence.NewRedisPublicCache(redisClient, cfg.Public.CacheTTL)
	qrGenerator, err := share.NewQRGenerator(cfg.App.PublicBaseURL, cfg.QR.Endpoint, cfg.QR.Size)
	if err != nil {
		appLogger.Fatal("Invalid QR configuration", err)
	}

	profileOpts := []profileUC.Option{
		profileUC.WithUpdateGuard(persistence.NewRedisUpdateGuard(redisClient, cfg.Profile.UpdateLockTTL)),
		profileUC.WithPublicCache(publicCache),
	}
	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("Kafka not configured, profile events are disabled", zap.Error(err))
	} else {
		defer kafkaClient.Close()
		profileOpts = append(profileOpts, profileUC.WithEventPublisher(kafkaClient))
	}

	// Use Cases
	profileUseCase := profileUC.NewProfileUseCase(profileRepo, profileUC.NewWorkspaces(), appLogger, profileOpts...)
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	sessionUseCase := authUC.NewSessionUseCase(jwtSvc, persistence.NewRedisRevocations(redisClient), userRepo, appLogger, profileUseCase)
	resolver := share.NewPublicResolver(profileRepo, publicCache, appLogger)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Auth:    httpAdapter.NewAuthHandler(loginUseCase, sessionUseCase, appLogger),
		Profile: httpAdapter.NewProfileHandler(profileUseCase, qrGenerator, appLogger),
		Public:  httpAdapter.NewPublicHandler(resolver, qrGenerator, appLogger),
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(handlers, httpAdapter.RouterOptions{
		Authenticator:   sessionUseCase,
		PublicRateLimit: cfg.Public.RateLimit,
		PublicRateBurst: cfg.Public.RateBurst,
	}, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
