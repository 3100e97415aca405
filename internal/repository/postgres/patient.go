package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/ward-api/internal/model"
	"github.com/jwalitptl/ward-api/internal/repository"
	apperrors "github.com/jwalitptl/ward-api/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, full_name, delivery_date, next_of_kin_name, next_of_kin_phone,
			status, registered_by, registered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.FullName,
		patient.DeliveryDate,
		patient.NextOfKinName,
		patient.NextOfKinPhone,
		patient.Status,
		patient.RegisteredBy,
		patient.RegisteredAt,
	)
	if err != nil {
		return apperrors.NewStore("create patient", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("patient", err)
	}
	if err != nil {
		return nil, apperrors.NewStore("get patient", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			full_name = $1, delivery_date = $2, next_of_kin_name = $3,
			next_of_kin_phone = $4, status = $5, assigned_nurse_id = $6,
			labor_room_id = $7, delivered_at = $8, baby_gender = $9,
			delivery_notes = $10
		WHERE id = $11
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.FullName,
		patient.DeliveryDate,
		patient.NextOfKinName,
		patient.NextOfKinPhone,
		patient.Status,
		patient.AssignedNurseID,
		patient.LaborRoomID,
		patient.DeliveredAt,
		patient.BabyGender,
		patient.DeliveryNotes,
		patient.ID,
	)
	if err != nil {
		return apperrors.NewStore("update patient", err)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]*model.Patient, error) {
	query := `SELECT * FROM patients ORDER BY registered_at DESC`
	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query); err != nil {
		return nil, apperrors.NewStore("list patients", err)
	}
	return patients, nil
}
