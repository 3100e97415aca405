package model

import (
	"github.com/google/uuid"
)

// LaborRoom holds at most one patient at a time. is_occupied is true
// exactly when current_patient_id is set; assigned_nurse_id, when set on
// an occupied room, is the nurse who accepted the current patient.
type LaborRoom struct {
	Base
	Name             string     `db:"name" json:"name"`
	IsOccupied       bool       `db:"is_occupied" json:"is_occupied"`
	AssignedNurseID  *uuid.UUID `db:"assigned_nurse_id" json:"assigned_nurse_id,omitempty"`
	CurrentPatientID *uuid.UUID `db:"current_patient_id" json:"current_patient_id,omitempty"`
}

type CreateLaborRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateLaborRoomRequest covers rename and nurse reassignment. An empty
// assigned_nurse_id string clears the assignment.
type UpdateLaborRoomRequest struct {
	Name            *string `json:"name"`
	AssignedNurseID *string `json:"assigned_nurse_id" binding:"omitempty"`
}
