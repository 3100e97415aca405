package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

// wardStore runs each lifecycle write in a single transaction: the
// patient row, the room row and the outbox event commit together. The
// updates carry status guards so a concurrent transition on the same
// patient or room makes the guard miss instead of double-booking.
type wardStore struct {
	BaseRepository
}

func NewWardStore(db *sqlx.DB) repository.WardStore {
	return &wardStore{BaseRepository: NewBaseRepository(db)}
}

func (s *wardStore) RegisterPatient(ctx context.Context, patient *model.Patient, event *model.OutboxEvent) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO patients (
				id, full_name, delivery_date, next_of_kin_name, next_of_kin_phone,
				status, registered_by, registered_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, patient.ID, patient.FullName, patient.DeliveryDate, patient.NextOfKinName,
			patient.NextOfKinPhone, patient.Status, patient.RegisteredBy, patient.RegisteredAt)
		if err != nil {
			return apperrors.NewStore("create patient", err)
		}
		return insertOutboxEvent(ctx, tx, event)
	})
}

func (s *wardStore) AcceptPatientIntoRoom(ctx context.Context, patientID, roomID, nurseID uuid.UUID, event *model.OutboxEvent) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE patients SET
				status = $2, labor_room_id = $3, assigned_nurse_id = $4
			WHERE id = $1 AND status = $5
		`, patientID, model.PatientStatusInLabor, roomID, nurseID, model.PatientStatusRegistered)
		if err != nil {
			return apperrors.NewStore("accept patient", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return apperrors.NewStore("accept patient", err)
		} else if n == 0 {
			return apperrors.NewInvalidTransition("patient is not awaiting labor")
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE labor_rooms SET
				is_occupied = TRUE, current_patient_id = $2, assigned_nurse_id = $3, updated_at = NOW()
			WHERE id = $1 AND is_occupied = FALSE
		`, roomID, patientID, nurseID)
		if err != nil {
			return apperrors.NewStore("occupy labor room", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return apperrors.NewStore("occupy labor room", err)
		} else if n == 0 {
			return apperrors.NewRoomUnavailable(roomID.String())
		}

		return insertOutboxEvent(ctx, tx, event)
	})
}

func (s *wardStore) CompleteDelivery(ctx context.Context, patient *model.Patient, event *model.OutboxEvent) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE patients SET
				status = $2, delivered_at = $3, baby_gender = $4, delivery_notes = $5,
				assigned_nurse_id = NULL, labor_room_id = NULL
			WHERE id = $1 AND status = $6
		`, patient.ID, model.PatientStatusDelivered, patient.DeliveredAt,
			patient.BabyGender, patient.DeliveryNotes, model.PatientStatusInLabor)
		if err != nil {
			return apperrors.NewStore("complete delivery", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return apperrors.NewStore("complete delivery", err)
		} else if n == 0 {
			return apperrors.NewInvalidTransition("patient is not in labor")
		}

		// Releasing by patient id is a no-op when no room holds the
		// patient, which is not an error.
		_, err = tx.ExecContext(ctx, `
			UPDATE labor_rooms SET
				is_occupied = FALSE, current_patient_id = NULL, assigned_nurse_id = NULL, updated_at = NOW()
			WHERE current_patient_id = $1
		`, patient.ID)
		if err != nil {
			return apperrors.NewStore("release labor room", err)
		}

		return insertOutboxEvent(ctx, tx, event)
	})
}
