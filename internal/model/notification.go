package model

import (
	"time"

	"github.com/google/uuid"
)

// SMSMessage is the payload published to the notification channel for the
// external SMS dispatcher.
type SMSMessage struct {
	Phone     string     `json:"phone"`
	Body      string     `json:"body"`
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
	QueuedAt  time.Time  `json:"queued_at"`
}
