package booking

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Only scheduled and confirmed occupy the calendar.
const (
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true, StatusNoShow: true,
}

// OccupiesCalendar reports whether an appointment in the given status blocks
// its interval for new bookings.
func OccupiesCalendar(status string) bool {
	return status == StatusScheduled || status == StatusConfirmed
}

// Visit types.
const (
	TypeConsultation = "consultation"
	TypeFollowUp     = "follow_up"
	TypeEmergency    = "emergency"
)

// Appointment is one reservation of a doctor's time.
type Appointment struct {
	ID              uuid.UUID `json:"id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	Date            time.Time `json:"date"`
	Start           TimeOfDay `json:"time"`
	Duration        int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason,omitempty"`
	Type            string    `json:"type,omitempty"`
	ConsultationFee int       `json:"consultation_fee"`
	RegistrationFee int       `json:"registration_fee"`
	TotalAmount     int       `json:"total_amount"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// End returns the exclusive end of the appointment's interval.
func (a *Appointment) End() TimeOfDay {
	return a.Start.Add(a.Duration)
}

// Slot is a candidate bookable interval derived from the weekly template for
// one concrete date.
type Slot struct {
	Time      TimeOfDay `json:"time"`
	Duration  int       `json:"duration_minutes"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
}

// Availability is the checker's verdict for one candidate interval.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// BookingRequest carries a validated booking attempt into the arbiter.
type BookingRequest struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Date      time.Time
	Start     TimeOfDay
	Duration  int // minutes; 0 means the default
	Reason    string
	Type      string
}

// Appointment duration bounds in minutes.
const (
	MinDuration     = 30
	MaxDuration     = 120
	DefaultDuration = 60
)

// DoctorInfo is the slice of the doctor directory the booking engine needs.
type DoctorInfo struct {
	ID              uuid.UUID
	Name            string
	Approved        bool
	ConsultationFee int
	RegistrationFee int
	Schedule        WeeklySchedule
}
