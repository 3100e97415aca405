package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/jwalitptl/ward-api/internal/config"
	"github.com/jwalitptl/ward-api/internal/email"
	"github.com/jwalitptl/ward-api/internal/handler"
	activityHandler "github.com/jwalitptl/ward-api/internal/handler/activity"
	authHandler "github.com/jwalitptl/ward-api/internal/handler/auth"
	patientHandler "github.com/jwalitptl/ward-api/internal/handler/patient"
	roomHandler "github.com/jwalitptl/ward-api/internal/handler/room"
	templateHandler "github.com/jwalitptl/ward-api/internal/handler/template"
	userHandler "github.com/jwalitptl/ward-api/internal/handler/user"
	"github.com/jwalitptl/ward-api/internal/middleware"
	"github.com/jwalitptl/ward-api/internal/repository/postgres"
	"github.com/jwalitptl/ward-api/internal/router"
	activityService "github.com/jwalitptl/ward-api/internal/service/activity"
	authService "github.com/jwalitptl/ward-api/internal/service/auth"
	"github.com/jwalitptl/ward-api/internal/service/notification"
	patientService "github.com/jwalitptl/ward-api/internal/service/patient"
	roomService "github.com/jwalitptl/ward-api/internal/service/room"
	templateService "github.com/jwalitptl/ward-api/internal/service/template"
	userService "github.com/jwalitptl/ward-api/internal/service/user"
	jwtauth "github.com/jwalitptl/ward-api/pkg/auth"
	"github.com/jwalitptl/ward-api/pkg/logger"
	redisbroker "github.com/jwalitptl/ward-api/pkg/messaging/redis"
	"github.com/jwalitptl/ward-api/pkg/metrics"
	"github.com/jwalitptl/ward-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	roomRepo := postgres.NewRoomRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	userRepo := postgres.NewUserRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	wardStore := postgres.NewWardStore(db)

	// Services
	emailSvc := email.NewService(cfg.SMTP)
	jwtSvc := jwtauth.NewJWTService(cfg.JWT)
	recorder := activityService.NewService(activityRepo)
	templateSvc := templateService.NewService(templateRepo, recorder)
	roomSvc := roomService.NewService(roomRepo, recorder)
	notifier := notification.NewService(cfg.Notification, broker, emailSvc, appLogger)
	patientSvc := patientService.NewService(
		patientRepo, roomRepo, wardStore,
		templateSvc, notifier, recorder,
	)
	userSvc := userService.NewService(userRepo, emailSvc, recorder, appLogger)
	authSvc := authService.NewService(userRepo, jwtSvc)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(patientSvc),
		roomHandler.NewHandler(roomSvc),
		templateHandler.NewHandler(templateSvc),
		activityHandler.NewHandler(recorder),
		userHandler.NewHandler(userSvc),
		handler.NewHealthHandler(db),
		router.Config{
			RateLimitRPS:   rateLimitRPS(cfg.RateLimit),
			RateLimitBurst: cfg.RateLimit.Burst,
			RequestTimeout: cfg.Server.RequestTimeout,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "ward_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// The API embeds an outbox processor so a single-binary deployment
	// still dispatches events.
	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:    cfg.Outbox.BatchSize,
		PollInterval: cfg.Outbox.PollInterval,
		MaxRetries:   cfg.Outbox.MaxRetries,
		RetryDelay:   time.Second,
		Channel:      cfg.Outbox.Channel,
	}, appLogger, metrics.NewMetrics("ward"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go processor.Start(ctx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	appLogger.Info(fmt.Sprintf("listening on :%d", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}

func rateLimitRPS(cfg config.RateLimitConfig) float64 {
	if !cfg.Enabled {
		return 0
	}
	return cfg.RequestsPerSecond
}
