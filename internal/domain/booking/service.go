package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service is the booking engine: it expands weekly templates into concrete
// slots, arbitrates availability, and owns the authoritative check-then-write
// booking path.
type Service struct {
	appts    AppointmentRepository
	doctors  DoctorDirectory
	patients PatientDirectory
	log      zerolog.Logger
}

func NewService(appts AppointmentRepository, doctors DoctorDirectory, patients PatientDirectory, log zerolog.Logger) *Service {
	return &Service{appts: appts, doctors: doctors, patients: patients, log: log}
}

// GenerateSlots expands the doctor's weekly template into the ordered slots
// for one calendar date, tagging each with its availability verdict. A closed
// day yields no slots.
//
// A slot is offered whenever it starts strictly before closing time, even if
// it would run past closing. That laxity matches long-standing clinic
// behavior and is pinned by tests; do not tighten it here.
func (s *Service) GenerateSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]Slot, error) {
	doc, err := s.doctors.DoctorInfo(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	day := doc.Schedule.Day(date.Weekday())
	if !day.IsOpen {
		return []Slot{}, nil
	}

	existing, err := s.appts.ListForDoctorDate(ctx, doctorID, normalizeDate(date))
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	dur := day.EffectiveSlotDuration()
	var slots []Slot
	for start := day.Start; start < day.End; start = start.Add(dur) {
		slot := Slot{Time: start, Duration: dur}

		// Break-time slots are decided here; the availability checker is
		// never consulted for them.
		if day.Break != nil && overlaps(start, dur, day.Break.Start, int(day.Break.End-day.Break.Start)) {
			slot.Reason = ReasonBreakTime
			slots = append(slots, slot)
			continue
		}

		if err := checkConflicts(day, existing, start, dur); err != nil {
			slot.Reason = err.Error()
		} else {
			slot.Available = true
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

// CheckAvailability decides whether one candidate interval can be booked for
// the given doctor and date.
func (s *Service) CheckAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time, start TimeOfDay, duration int) (Availability, error) {
	doc, err := s.doctors.DoctorInfo(ctx, doctorID)
	if err != nil {
		return Availability{}, err
	}

	existing, err := s.appts.ListForDoctorDate(ctx, doctorID, normalizeDate(date))
	if err != nil {
		return Availability{}, fmt.Errorf("load appointments: %w", err)
	}

	day := doc.Schedule.Day(date.Weekday())
	if err := checkConflicts(day, existing, start, duration); err != nil {
		return Availability{Reason: err.Error()}, nil
	}
	return Availability{Available: true}, nil
}

// checkConflicts is the availability arbitration itself, ordered and
// short-circuiting:
//  1. closed day or start outside open hours,
//  2. exact start-time match against a live appointment (fast path for the
//     common identical-duration case),
//  3. general half-open interval overlap (handles mixed durations).
//
// Both booking phases go through this one function so the slot listing and
// the commit-time re-check can never diverge.
func checkConflicts(day DaySchedule, existing []*Appointment, start TimeOfDay, duration int) error {
	if !day.Contains(start) {
		return ErrClinicClosed
	}

	for _, a := range existing {
		if !OccupiesCalendar(a.Status) {
			continue
		}
		if a.Start == start {
			return ErrSlotTaken
		}
	}

	for _, a := range existing {
		if !OccupiesCalendar(a.Status) {
			continue
		}
		if overlaps(start, duration, a.Start, a.Duration) {
			return ErrSlotOverlap
		}
	}

	return nil
}

// Book is the write path. It re-runs the availability check synchronously
// immediately before persisting; any verdict shown to the user earlier is
// advisory only. The repository's conflict-checked insert backs this up for
// races the re-check cannot see, and a losing writer gets the same rejection
// as an ordinary "already booked" response.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.Duration == 0 {
		req.Duration = DefaultDuration
	}
	if req.Type == "" {
		req.Type = TypeConsultation
	}
	if req.Duration < MinDuration || req.Duration > MaxDuration {
		return nil, ErrInvalidDuration
	}
	if !req.Start.Valid() {
		return nil, fmt.Errorf("invalid start time %d", req.Start)
	}

	doc, err := s.doctors.DoctorInfo(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doc.Approved {
		return nil, ErrDoctorNotApproved
	}

	ok, err := s.patients.PatientExists(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("look up patient: %w", err)
	}
	if !ok {
		return nil, ErrPatientNotFound
	}

	date := normalizeDate(req.Date)

	existing, err := s.appts.ListForDoctorDate(ctx, req.DoctorID, date)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	day := doc.Schedule.Day(date.Weekday())
	if err := checkConflicts(day, existing, req.Start, req.Duration); err != nil {
		return nil, err
	}

	// Fees come from the doctor's current configuration, never from client
	// input, and the total is computed server-side.
	appt := &Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		Date:            date,
		Start:           req.Start,
		Duration:        req.Duration,
		Status:          StatusScheduled,
		Reason:          req.Reason,
		Type:            req.Type,
		ConsultationFee: doc.ConsultationFee,
		RegistrationFee: doc.RegistrationFee,
		TotalAmount:     doc.ConsultationFee + doc.RegistrationFee,
	}

	if err := s.appts.Create(ctx, appt); err != nil {
		return nil, err
	}

	if err := s.doctors.IncrementAppointments(ctx, req.DoctorID); err != nil {
		s.log.Warn().Err(err).
			Str("doctor_id", req.DoctorID.String()).
			Msg("appointment counter increment failed")
	}

	return appt, nil
}

// GetAppointment returns one reservation by id.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// ListByDoctor returns a doctor's appointments, newest date first.
func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByDoctor(ctx, doctorID, limit, offset)
}

// ListByPatient returns a patient's appointments, newest date first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appts.ListByPatient(ctx, patientID, limit, offset)
}

// UpdateStatus transitions an appointment to the given status. Moving an
// appointment out of a live status frees its interval.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.appts.UpdateStatus(ctx, id, status)
}

// normalizeDate strips the time-of-day so a calendar date compares equal
// regardless of how the caller built it.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
