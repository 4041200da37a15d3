package doctor

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/booking"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

var validApprovalStatuses = map[string]bool{
	ApprovalPending:  true,
	ApprovalApproved: true,
	ApprovalRejected: true,
}

var (
	ErrNotFound        = errors.New("doctor not found")
	ErrInvalidApproval = errors.New("invalid approval status")
	ErrInvalidInput    = errors.New("invalid doctor input")
)

// Doctor is a directory entry. The weekly schedule is stored as a JSON
// document alongside the row; fees are in the clinic's minor currency unit.
type Doctor struct {
	ID                uuid.UUID              `json:"id"`
	Name              string                 `json:"name"`
	Specialty         string                 `json:"specialty"`
	Email             string                 `json:"email"`
	Phone             string                 `json:"phone,omitempty"`
	Bio               string                 `json:"bio,omitempty"`
	ApprovalStatus    string                 `json:"approval_status"`
	ConsultationFee   int                    `json:"consultation_fee"`
	RegistrationFee   int                    `json:"registration_fee"`
	TotalAppointments int                    `json:"total_appointments"`
	Schedule          booking.WeeklySchedule `json:"schedule"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func (d *Doctor) Approved() bool { return d.ApprovalStatus == ApprovalApproved }
