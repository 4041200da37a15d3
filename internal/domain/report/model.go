package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("consultation report not found")
	ErrBadSignature = errors.New("webhook signature mismatch")
)

// ConsultationReport is the transcription service's write-up of a completed
// visit, delivered over the signed webhook.
type ConsultationReport struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Transcript    string    `json:"transcript"`
	Summary       string    `json:"summary"`
	CreatedAt     time.Time `json:"created_at"`
}
