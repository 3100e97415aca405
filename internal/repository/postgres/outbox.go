package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

type outboxRepository struct {
	db *sqlx.DB
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

// insertOutboxEvent writes an event row through any executor, so the
// ward store can enqueue inside its own transaction.
func insertOutboxEvent(ctx context.Context, ext sqlx.ExtContext, event *model.OutboxEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()

	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := ext.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.RetryCount,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.NewStore("create outbox event", err)
	}
	return nil
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return insertOutboxEvent(ctx, r.db, event)
}

func (r *outboxRepository) BeginTx(ctx context.Context) (repository.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStore("begin outbox claim", err)
	}
	return tx, nil
}

// GetPendingEvents locks the claimed rows for the lifetime of tx, so
// concurrent processors skip them instead of double-publishing.
func (r *outboxRepository) GetPendingEvents(ctx context.Context, tx repository.Tx, limit int) ([]*model.OutboxEvent, error) {
	sqlxTx, ok := tx.(*sqlx.Tx)
	if !ok {
		return nil, apperrors.NewInternal(nil)
	}

	query := `
		SELECT * FROM outbox_events
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	var events []*model.OutboxEvent
	if err := sqlxTx.SelectContext(ctx, &events, query, model.OutboxStatusPending, limit); err != nil {
		return nil, apperrors.NewStore("get pending events", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, tx repository.Tx, id uuid.UUID) error {
	sqlxTx, ok := tx.(*sqlx.Tx)
	if !ok {
		return apperrors.NewInternal(nil)
	}

	query := `UPDATE outbox_events SET status = $1, processed_at = NOW() WHERE id = $2`
	if _, err := sqlxTx.ExecContext(ctx, query, model.OutboxStatusProcessed, id); err != nil {
		return apperrors.NewStore("mark event processed", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, tx repository.Tx, id uuid.UUID, errMsg string) error {
	sqlxTx, ok := tx.(*sqlx.Tx)
	if !ok {
		return apperrors.NewInternal(nil)
	}

	query := `
		UPDATE outbox_events SET
			status = $1, error_message = $2, retry_count = retry_count + 1
		WHERE id = $3
	`
	if _, err := sqlxTx.ExecContext(ctx, query, model.OutboxStatusFailed, errMsg, id); err != nil {
		return apperrors.NewStore("mark event failed", err)
	}
	return nil
}
