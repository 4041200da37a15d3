package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentRepository is the persistent source of truth for reservations.
// Create is conflict-checked: it must refuse to persist an appointment whose
// interval overlaps a live appointment for the same doctor and date, returning
// ErrSlotTaken, so that races the application-level pre-check cannot see are
// still resolved to a single winner.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// ListForDoctorDate returns the calendar-occupying appointments for one
	// doctor and date, ordered by start time.
	ListForDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// DoctorDirectory supplies the doctor state the booking engine depends on.
// Implemented by the doctor domain service.
type DoctorDirectory interface {
	DoctorInfo(ctx context.Context, id uuid.UUID) (*DoctorInfo, error)
	// IncrementAppointments bumps the doctor's denormalized booking counter.
	// Best-effort: failures are logged, never fatal.
	IncrementAppointments(ctx context.Context, id uuid.UUID) error
}

// PatientDirectory supplies patient id validity.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
}
