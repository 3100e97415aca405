package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientStatus is the patient lifecycle state. Transitions only move
// forward: registered -> in_labor -> delivered.
type PatientStatus string

const (
	PatientStatusRegistered PatientStatus = "registered"
	PatientStatusInLabor    PatientStatus = "in_labor"
	PatientStatusDelivered  PatientStatus = "delivered"
)

type BabyGender string

const (
	BabyGenderMale   BabyGender = "male"
	BabyGenderFemale BabyGender = "female"
)

// Patient is an expectant mother tracked through registration, labor and
// delivery. assigned_nurse_id and labor_room_id are set while in_labor and
// only then.
type Patient struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	FullName        string        `db:"full_name" json:"full_name"`
	DeliveryDate    *time.Time    `db:"delivery_date" json:"delivery_date,omitempty"`
	NextOfKinName   string        `db:"next_of_kin_name" json:"next_of_kin_name"`
	NextOfKinPhone  string        `db:"next_of_kin_phone" json:"next_of_kin_phone"`
	Status          PatientStatus `db:"status" json:"status"`
	AssignedNurseID *uuid.UUID    `db:"assigned_nurse_id" json:"assigned_nurse_id,omitempty"`
	LaborRoomID     *uuid.UUID    `db:"labor_room_id" json:"labor_room_id,omitempty"`
	RegisteredBy    uuid.UUID     `db:"registered_by" json:"registered_by"`
	RegisteredAt    time.Time     `db:"registered_at" json:"registered_at"`
	DeliveredAt     *time.Time    `db:"delivered_at" json:"delivered_at,omitempty"`
	BabyGender      *BabyGender   `db:"baby_gender" json:"baby_gender,omitempty"`
	DeliveryNotes   *string       `db:"delivery_notes" json:"delivery_notes,omitempty"`
}

type RegisterPatientRequest struct {
	FullName       string     `json:"full_name" binding:"required"`
	DeliveryDate   *time.Time `json:"delivery_date"`
	NextOfKinName  string     `json:"next_of_kin_name" binding:"required"`
	NextOfKinPhone string     `json:"next_of_kin_phone" binding:"required,phone"`
}

type AcceptPatientRequest struct {
	LaborRoomID string `json:"labor_room_id" binding:"required,uuid"`
}

type CompleteDeliveryRequest struct {
	BabyGender    string `json:"baby_gender" binding:"required,oneof=male female"`
	DeliveryNotes string `json:"delivery_notes"`
	TemplateID    string `json:"template_id" binding:"required,uuid"`
}
