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

type roomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) repository.RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *model.LaborRoom) error {
	query := `
		INSERT INTO labor_rooms (id, name, is_occupied, assigned_nurse_id, current_patient_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		room.ID,
		room.Name,
		room.IsOccupied,
		room.AssignedNurseID,
		room.CurrentPatientID,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewStore("create labor room", err)
	}
	return nil
}

func (r *roomRepository) Get(ctx context.Context, id uuid.UUID) (*model.LaborRoom, error) {
	query := `SELECT * FROM labor_rooms WHERE id = $1`
	var room model.LaborRoom
	err := r.db.GetContext(ctx, &room, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("labor room", err)
	}
	if err != nil {
		return nil, apperrors.NewStore("get labor room", err)
	}
	return &room, nil
}

func (r *roomRepository) GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.LaborRoom, error) {
	query := `SELECT * FROM labor_rooms WHERE current_patient_id = $1`
	var room model.LaborRoom
	err := r.db.GetContext(ctx, &room, query, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("labor room", err)
	}
	if err != nil {
		return nil, apperrors.NewStore("get labor room by patient", err)
	}
	return &room, nil
}

func (r *roomRepository) Update(ctx context.Context, room *model.LaborRoom) error {
	query := `
		UPDATE labor_rooms SET
			name = $1, is_occupied = $2, assigned_nurse_id = $3,
			current_patient_id = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query,
		room.Name,
		room.IsOccupied,
		room.AssignedNurseID,
		room.CurrentPatientID,
		room.ID,
	)
	if err != nil {
		return apperrors.NewStore("update labor room", err)
	}
	return nil
}

func (r *roomRepository) List(ctx context.Context) ([]*model.LaborRoom, error) {
	query := `SELECT * FROM labor_rooms ORDER BY name`
	var rooms []*model.LaborRoom
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, apperrors.NewStore("list labor rooms", err)
	}
	return rooms, nil
}

func (r *roomRepository) Occupy(ctx context.Context, roomID, patientID, nurseID uuid.UUID) error {
	query := `
		UPDATE labor_rooms SET
			is_occupied = TRUE, current_patient_id = $2, assigned_nurse_id = $3, updated_at = NOW()
		WHERE id = $1 AND is_occupied = FALSE
	`
	res, err := r.db.ExecContext(ctx, query, roomID, patientID, nurseID)
	if err != nil {
		return apperrors.NewStore("occupy labor room", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewStore("occupy labor room", err)
	}
	if n == 0 {
		return apperrors.NewRoomUnavailable(roomID.String())
	}
	return nil
}

func (r *roomRepository) ReleaseByPatient(ctx context.Context, patientID uuid.UUID) error {
	query := `
		UPDATE labor_rooms SET
			is_occupied = FALSE, current_patient_id = NULL, assigned_nurse_id = NULL, updated_at = NOW()
		WHERE current_patient_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, patientID); err != nil {
		return apperrors.NewStore("release labor room", err)
	}
	return nil
}
