package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity action labels
const (
	ActivityPatientRegistered = "Patient Registered"
	ActivityPatientAccepted   = "Patient Accepted"
	ActivityDeliveryCompleted = "Delivery Completed"
	ActivityRoomCreated       = "Room Created"
	ActivityRoomUpdated       = "Room Updated"
	ActivityTemplateCreated   = "Template Created"
	ActivityTemplateUpdated   = "Template Updated"
	ActivityUserCreated       = "User Created"
	ActivityUserUpdated       = "User Updated"
)

// ActivityLog is an append-only audit entry. Entries are immutable once
// written and listed newest-first.
type ActivityLog struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Action    string     `db:"action" json:"action"`
	Details   string     `db:"details" json:"details"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	UserName  string     `db:"user_name" json:"user_name"`
	Timestamp time.Time  `db:"timestamp" json:"timestamp"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
}
