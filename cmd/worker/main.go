package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"

	"github.com/mzansicare/booking-api/internal/config"
	"github.com/mzansicare/booking-api/internal/email"
	"github.com/mzansicare/booking-api/internal/repository/postgres"
	eventService "github.com/mzansicare/booking-api/internal/service/event"
	notificationService "github.com/mzansicare/booking-api/internal/service/notification"
	"github.com/mzansicare/booking-api/pkg/logger"
	"github.com/mzansicare/booking-api/pkg/messaging/redis"
	"github.com/mzansicare/booking-api/pkg/metrics"
	"github.com/mzansicare/booking-api/pkg/worker"
)

// Config is read from the environment; the worker deliberately has no
// config file so it can run as a sidecar with nothing mounted.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	BatchSize     int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval  time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	RetryAttempts int           `envconfig:"OUTBOX_RETRY_ATTEMPTS" default:"3"`
	RetryDelay    time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"5s"`
	MaxDeliveryAttempts int           `envconfig:"OUTBOX_MAX_DELIVERY_ATTEMPTS" default:"5"`
	RetryBackoff        time.Duration `envconfig:"OUTBOX_RETRY_BACKOFF" default:"2m"`

	EventRetention     time.Duration `envconfig:"EVENT_RETENTION" default:"168h"`
	AuditRetentionDays int           `envconfig:"AUDIT_RETENTION_DAYS" default:"365"`
	CleanupInterval    time.Duration `envconfig:"CLEANUP_INTERVAL" default:"24h"`

	HealthAddr string `envconfig:"HEALTH_ADDR" default:":8081"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"noreply@mzansicare.org"`
}

var notificationChannels = []string{
	eventService.TypeAppointmentCreated,
	eventService.TypeAppointmentConfirmed,
	eventService.TypeAppointmentCancelled,
	eventService.TypeAppointmentRescheduled,
}

func main() {
	log := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal(err, "Failed to load worker config")
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.ZL)
	if err != nil {
		log.Fatal(err, "Failed to create Redis broker")
	}
	defer broker.Close()

	baseRepo := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)
	auditRepo := postgres.NewAuditRepository(baseRepo)
	notificationRepo := postgres.NewNotificationRepository(baseRepo)
	patientRepo := postgres.NewPatientRepository(baseRepo)

	emailSvc := email.Noop()
	if cfg.SMTPHost != "" {
		emailSvc = email.NewSMTPService(smtpConfig(cfg))
	}

	eventSvc := eventService.NewService(outboxRepo)
	notificationSvc := notificationService.NewService(notificationRepo, patientRepo, emailSvc, log)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:           cfg.BatchSize,
			PollInterval:        cfg.PollInterval,
			RetryAttempts:       cfg.RetryAttempts,
			RetryDelay:          cfg.RetryDelay,
			MaxDeliveryAttempts: cfg.MaxDeliveryAttempts,
			RetryBackoff:        cfg.RetryBackoff,
		},
		log,
		metrics.NewMetrics("booking_worker", "outbox"),
	)

	auditCleanup := worker.NewAuditCleanupWorker(auditRepo, cfg.AuditRetentionDays, cfg.CleanupInterval, log)

	setupHealthCheck(cfg.HealthAddr, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down worker")
		cancel()
	}()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		auditCleanup.Start(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runEventCleanup(ctx, eventSvc, cfg.CleanupInterval, cfg.EventRetention, log)
	}()

	for _, channel := range notificationChannels {
		messages, err := broker.Subscribe(ctx, channel)
		if err != nil {
			log.Fatal(err, "Failed to subscribe", "channel", channel)
		}
		wg.Add(1)
		go func(eventType string, messages <-chan []byte) {
			defer wg.Done()
			consumeNotifications(ctx, notificationSvc, eventType, messages, log)
		}(channel, messages)
	}

	wg.Wait()
}

func consumeNotifications(ctx context.Context, svc *notificationService.Service, eventType string, messages <-chan []byte, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-messages:
			if !ok {
				return
			}
			if err := svc.HandleEvent(ctx, eventType, payload); err != nil {
				log.Error(err, "Failed to handle event", "event_type", eventType)
			}
		}
	}
}

func runEventCleanup(ctx context.Context, svc *eventService.Service, interval, retention time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := svc.CleanupProcessedEvents(ctx, retention)
			if err != nil {
				log.Error(err, "Failed to clean up processed events")
				continue
			}
			if count > 0 {
				log.Info("Removed processed events", "count", count)
			}
		}
	}
}

func setupHealthCheck(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error(err, "Health check server failed")
			os.Exit(1)
		}
	}()
}

func smtpConfig(cfg Config) (out config.SMTPConfig) {
	out.Host = cfg.SMTPHost
	out.Port = cfg.SMTPPort
	out.Username = cfg.SMTPUsername
	out.Password = cfg.SMTPPassword
	out.From = cfg.SMTPFrom
	return out
}
