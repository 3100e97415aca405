package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/ward-api/internal/model"
)

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	List(ctx context.Context) ([]*model.Patient, error)
}

type RoomRepository interface {
	Create(ctx context.Context, room *model.LaborRoom) error
	Get(ctx context.Context, id uuid.UUID) (*model.LaborRoom, error)
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.LaborRoom, error)
	Update(ctx context.Context, room *model.LaborRoom) error
	List(ctx context.Context) ([]*model.LaborRoom, error)
	// Occupy marks the room occupied by the patient, guarded on the room
	// being free. Returns RoomUnavailable when the guard misses.
	Occupy(ctx context.Context, roomID, patientID, nurseID uuid.UUID) error
	// ReleaseByPatient frees whichever room holds the patient. No-op when
	// no room does.
	ReleaseByPatient(ctx context.Context, patientID uuid.UUID) error
}

// WardStore bundles the lifecycle writes that must commit atomically:
// the patient row, the room row and the outbox event move together or
// not at all.
type WardStore interface {
	RegisterPatient(ctx context.Context, patient *model.Patient, event *model.OutboxEvent) error
	AcceptPatientIntoRoom(ctx context.Context, patientID, roomID, nurseID uuid.UUID, event *model.OutboxEvent) error
	CompleteDelivery(ctx context.Context, patient *model.Patient, event *model.OutboxEvent) error
}

type TemplateRepository interface {
	Create(ctx context.Context, template *model.MessageTemplate) error
	Get(ctx context.Context, id uuid.UUID) (*model.MessageTemplate, error)
	Update(ctx context.Context, template *model.MessageTemplate) error
	List(ctx context.Context) ([]*model.MessageTemplate, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, limit int) ([]*model.ActivityLog, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context) ([]*model.User, error)
}

// Tx is a committable claim on a batch of outbox rows. Row locks taken
// while the claim is open are held until Commit or Rollback.
type Tx interface {
	Commit() error
	Rollback() error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	// BeginTx opens the claim under which pending events are fetched and
	// marked. Locks stay held until the claim closes, so concurrent
	// processors skip each other's batches.
	BeginTx(ctx context.Context) (Tx, error)
	GetPendingEvents(ctx context.Context, tx Tx, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, tx Tx, id uuid.UUID) error
	MarkFailed(ctx context.Context, tx Tx, id uuid.UUID, errMsg string) error
}
