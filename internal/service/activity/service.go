package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
)

// Service is the append-only activity recorder. Every mutating operation
// in the ward writes exactly one entry here.
type Service struct {
	repo repository.ActivityRepository
}

func NewService(repo repository.ActivityRepository) *Service {
	return &Service{repo: repo}
}

// Record appends an entry for the given action. Failures are returned to
// the caller; entries are never retried.
func (s *Service) Record(ctx context.Context, action, details string, actor model.Actor, patientID *uuid.UUID) error {
	entry := &model.ActivityLog{
		ID:        uuid.New(),
		Action:    action,
		Details:   details,
		UserID:    actor.ID,
		UserName:  actor.Name,
		Timestamp: time.Now(),
		PatientID: patientID,
	}
	return s.repo.Create(ctx, entry)
}

// List returns the newest entries first, capped at limit.
func (s *Service) List(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit)
}
