package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/ward-api/internal/repository"
	"github.com/jwalitptl/ward-api/pkg/logger"
)

// ActivityCleanupWorker prunes activity log entries past the retention
// window.
type ActivityCleanupWorker struct {
	repo            repository.ActivityRepository
	retentionDays   int
	cleanupInterval time.Duration
	logger          *logger.Logger
}

func NewActivityCleanupWorker(repo repository.ActivityRepository, retentionDays int, cleanupInterval time.Duration, logger *logger.Logger) *ActivityCleanupWorker {
	return &ActivityCleanupWorker{
		repo:            repo,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          logger,
	}
}

func (w *ActivityCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	w.logger.Info("Starting activity cleanup worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Shutting down activity cleanup worker")
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Error(err, "Failed to clean up activity logs")
			}
		}
	}
}

func (w *ActivityCleanupWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete activity logs: %w", err)
	}

	w.logger.Info(fmt.Sprintf("Cleaned up %d activity logs older than %s", rows, cutoff.Format(time.RFC3339)))
	return nil
}
