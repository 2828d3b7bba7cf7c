package worker

import (
	"context"
	"time"

	"github.com/mzansicare/booking-api/internal/repository"
	"github.com/mzansicare/booking-api/pkg/logger"
)

// AuditCleanupWorker purges audit entries older than the retention window.
type AuditCleanupWorker struct {
	repo          repository.AuditRepository
	retentionDays int
	interval      time.Duration
	logger        *logger.Logger
}

func NewAuditCleanupWorker(repo repository.AuditRepository, retentionDays int, interval time.Duration, logger *logger.Logger) *AuditCleanupWorker {
	return &AuditCleanupWorker{
		repo:          repo,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        logger,
	}
}

func (w *AuditCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -w.retentionDays)
			if _, err := w.repo.DeleteBefore(ctx, cutoff); err != nil {
				w.logger.Error(err, "Failed to purge audit entries")
			}
		}
	}
}
