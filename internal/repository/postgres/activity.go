package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, action, details, user_id, user_name, timestamp, patient_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Action,
		entry.Details,
		entry.UserID,
		entry.UserName,
		entry.Timestamp,
		entry.PatientID,
	)
	if err != nil {
		return apperrors.NewStore("create activity log", err)
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, limit int) ([]*model.ActivityLog, error) {
	query := `SELECT * FROM activity_logs ORDER BY timestamp DESC LIMIT $1`
	var entries []*model.ActivityLog
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, apperrors.NewStore("list activity logs", err)
	}
	return entries, nil
}

func (r *activityRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, apperrors.NewStore("cleanup activity logs", err)
	}
	return res.RowsAffected()
}
