package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/mzansicare/booking-api/internal/config"
	appointmentHandler "github.com/mzansicare/booking-api/internal/handler/appointment"
	authHandler "github.com/mzansicare/booking-api/internal/handler/auth"
	clinicHandler "github.com/mzansicare/booking-api/internal/handler/clinic"
	clinicianHandler "github.com/mzansicare/booking-api/internal/handler/clinician"
	healthHandler "github.com/mzansicare/booking-api/internal/handler/health"
	patientHandler "github.com/mzansicare/booking-api/internal/handler/patient"
	"github.com/mzansicare/booking-api/internal/middleware"
	"github.com/mzansicare/booking-api/internal/repository/postgres"
	"github.com/mzansicare/booking-api/internal/router"
	appointmentService "github.com/mzansicare/booking-api/internal/service/appointment"
	auditService "github.com/mzansicare/booking-api/internal/service/audit"
	authService "github.com/mzansicare/booking-api/internal/service/auth"
	clinicService "github.com/mzansicare/booking-api/internal/service/clinic"
	clinicianService "github.com/mzansicare/booking-api/internal/service/clinician"
	eventService "github.com/mzansicare/booking-api/internal/service/event"
	patientService "github.com/mzansicare/booking-api/internal/service/patient"
	"github.com/mzansicare/booking-api/pkg/auth"
	"github.com/mzansicare/booking-api/pkg/locker"
	"github.com/mzansicare/booking-api/pkg/metrics"
	"github.com/mzansicare/booking-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	baseRepo := postgres.NewBaseRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(baseRepo)
	patientRepo := postgres.NewPatientRepository(baseRepo)
	clinicianRepo := postgres.NewClinicianRepository(baseRepo)
	clinicRepo := postgres.NewClinicRepository(baseRepo)
	userRepo := postgres.NewUserRepository(baseRepo)
	auditRepo := postgres.NewAuditRepository(baseRepo)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	auditSvc := auditService.NewService(auditRepo)
	eventSvc := eventService.NewService(outboxRepo)

	bookingLocks := locker.NewRedisLocker(redisClient, cfg.Redis.LockTTL)
	bookingMetrics := metrics.NewMetrics("booking_api", "scheduling")

	appointmentSvc := appointmentService.NewService(
		appointmentRepo,
		patientRepo,
		auditSvc,
		eventSvc,
		bookingLocks,
		bookingMetrics,
	)
	patientSvc := patientService.NewService(patientRepo, auditSvc)
	clinicianSvc := clinicianService.NewService(clinicianRepo)
	clinicSvc := clinicService.NewService(clinicRepo)

	jwtSvc := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour,
		time.Duration(cfg.JWT.RefreshExpiryHours)*time.Hour,
	)
	hasher := security.NewBcryptHasher(12)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher, auditSvc)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, userRepo)

	if err := router.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register request validators")
	}

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		patientHandler.NewHandler(patientSvc),
		clinicianHandler.NewHandler(clinicianSvc),
		clinicHandler.NewHandler(clinicSvc),
		healthHandler.NewHandler(db),
		router.Config{
			RateLimit:      rate.Limit(100),
			RateBurst:      200,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "booking_api",
		},
	)
	r.Setup()
	defer r.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
}
