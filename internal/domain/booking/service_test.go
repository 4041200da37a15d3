package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mocks --

// mockAppointmentRepo is a map-backed store whose Create performs the same
// conflict check the Postgres implementation runs inside its transaction.
type mockAppointmentRepo struct {
	mu    sync.Mutex
	appts map[uuid.UUID]*Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.appts {
		if e.DoctorID == a.DoctorID && e.Date.Equal(a.Date) && OccupiesCalendar(e.Status) &&
			overlaps(a.Start, a.Duration, e.Start, e.Duration) {
			return ErrSlotTaken
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appts[a.ID] = a
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return a, nil
}

func (m *mockAppointmentRepo) ListForDoctorDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.Date.Equal(date) && OccupiesCalendar(a.Status) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, _, _ int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID, _, _ int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockAppointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appts[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.Status = status
	return nil
}

type mockDoctorDirectory struct {
	mu       sync.Mutex
	doctors  map[uuid.UUID]*DoctorInfo
	counters map[uuid.UUID]int
}

func newMockDoctorDirectory() *mockDoctorDirectory {
	return &mockDoctorDirectory{
		doctors:  make(map[uuid.UUID]*DoctorInfo),
		counters: make(map[uuid.UUID]int),
	}
}

func (m *mockDoctorDirectory) DoctorInfo(_ context.Context, id uuid.UUID) (*DoctorInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

func (m *mockDoctorDirectory) IncrementAppointments(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[id]++
	return nil
}

type mockPatientDirectory struct {
	patients map[uuid.UUID]bool
}

func (m *mockPatientDirectory) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.patients[id], nil
}

// -- Fixtures --

// aMonday is a date known to fall on a Monday.
var aMonday = time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

func weekdaySchedule() WeeklySchedule {
	day := DaySchedule{
		IsOpen:       true,
		Start:        MustTimeOfDay("09:00"),
		End:          MustTimeOfDay("17:00"),
		SlotDuration: 30,
		Break:        &BreakWindow{Start: MustTimeOfDay("13:00"), End: MustTimeOfDay("14:00")},
	}
	return WeeklySchedule{Monday: day, Tuesday: day, Wednesday: day, Thursday: day, Friday: day}
}

type fixture struct {
	svc      *Service
	appts    *mockAppointmentRepo
	doctors  *mockDoctorDirectory
	doctorID uuid.UUID
	patient  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	appts := newMockAppointmentRepo()
	doctors := newMockDoctorDirectory()
	doctorID := uuid.New()
	doctors.doctors[doctorID] = &DoctorInfo{
		ID:              doctorID,
		Name:            "Dr. Okafor",
		Approved:        true,
		ConsultationFee: 5000,
		RegistrationFee: 1000,
		Schedule:        weekdaySchedule(),
	}
	patientID := uuid.New()
	patients := &mockPatientDirectory{patients: map[uuid.UUID]bool{patientID: true}}

	return &fixture{
		svc:      NewService(appts, doctors, patients, zerolog.Nop()),
		appts:    appts,
		doctors:  doctors,
		doctorID: doctorID,
		patient:  patientID,
	}
}

func (f *fixture) seedAppointment(t *testing.T, at string, duration int, status string) *Appointment {
	t.Helper()
	a := &Appointment{
		DoctorID:  f.doctorID,
		PatientID: uuid.New(),
		Date:      aMonday,
		Start:     MustTimeOfDay(at),
		Duration:  duration,
		Status:    status,
	}
	f.appts.mu.Lock()
	defer f.appts.mu.Unlock()
	a.ID = uuid.New()
	f.appts.appts[a.ID] = a
	return a
}

// -- Slot generation --

func TestGenerateSlotsClosedDayIsEmpty(t *testing.T) {
	f := newFixture(t)
	sunday := aMonday.AddDate(0, 0, 6)

	slots, err := f.svc.GenerateSlots(context.Background(), f.doctorID, sunday)
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots for a closed day, want 0", len(slots))
	}
}

func TestGenerateSlotsFullDayWithBreak(t *testing.T) {
	f := newFixture(t)

	slots, err := f.svc.GenerateSlots(context.Background(), f.doctorID, aMonday)
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}

	// 09:00..16:30 every 30 minutes, nothing at or after 17:00.
	if len(slots) != 16 {
		t.Fatalf("got %d slots, want 16", len(slots))
	}
	if slots[0].Time.String() != "09:00" {
		t.Errorf("first slot = %s, want 09:00", slots[0].Time)
	}
	if last := slots[len(slots)-1]; last.Time.String() != "16:30" {
		t.Errorf("last slot = %s, want 16:30", last.Time)
	}
	for _, sl := range slots {
		if sl.Time >= MustTimeOfDay("17:00") {
			t.Errorf("slot %s is at/after closing", sl.Time)
		}
		if sl.Duration != 30 {
			t.Errorf("slot %s duration = %d, want 30", sl.Time, sl.Duration)
		}

		inBreak := sl.Time == MustTimeOfDay("13:00") || sl.Time == MustTimeOfDay("13:30")
		if inBreak {
			if sl.Available || sl.Reason != ReasonBreakTime {
				t.Errorf("slot %s: available=%v reason=%q, want break time", sl.Time, sl.Available, sl.Reason)
			}
		} else if !sl.Available {
			t.Errorf("slot %s unexpectedly unavailable: %s", sl.Time, sl.Reason)
		}
	}

	// Chronological order.
	for i := 1; i < len(slots); i++ {
		if slots[i].Time <= slots[i-1].Time {
			t.Fatalf("slots out of order at %d: %s then %s", i, slots[i-1].Time, slots[i].Time)
		}
	}
}

// A slot may start before closing yet run past it. That behavior is
// deliberate: clinics tolerate the final appointment overrunning.
func TestGenerateSlotsLastSlotMayRunPastClosing(t *testing.T) {
	f := newFixture(t)
	f.doctors.doctors[f.doctorID].Schedule = WeeklySchedule{
		Monday: DaySchedule{
			IsOpen:       true,
			Start:        MustTimeOfDay("09:00"),
			End:          MustTimeOfDay("10:30"),
			SlotDuration: 60,
		},
	}

	slots, err := f.svc.GenerateSlots(context.Background(), f.doctorID, aMonday)
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[1].Time.String() != "10:00" {
		t.Errorf("second slot = %s, want 10:00 (ends past closing)", slots[1].Time)
	}
}

func TestGenerateSlotsReflectsBookings(t *testing.T) {
	f := newFixture(t)
	f.seedAppointment(t, "10:00", 30, StatusConfirmed)

	slots, err := f.svc.GenerateSlots(context.Background(), f.doctorID, aMonday)
	if err != nil {
		t.Fatalf("GenerateSlots: %v", err)
	}
	for _, sl := range slots {
		if sl.Time == MustTimeOfDay("10:00") {
			if sl.Available || sl.Reason != ReasonBooked {
				t.Errorf("booked slot: available=%v reason=%q", sl.Available, sl.Reason)
			}
		}
	}
}

func TestGenerateSlotsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedAppointment(t, "11:00", 30, StatusScheduled)

	first, err := f.svc.GenerateSlots(context.Background(), f.doctorID, aMonday)
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.GenerateSlots(context.Background(), f.doctorID, aMonday)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("slot %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestGenerateSlotsUnknownDoctor(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.GenerateSlots(context.Background(), uuid.New(), aMonday); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("err = %v, want ErrDoctorNotFound", err)
	}
}

// -- Availability checking --

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	f.seedAppointment(t, "10:00", 60, StatusConfirmed)

	tests := []struct {
		name       string
		at         string
		duration   int
		available  bool
		wantReason string
	}{
		{"exact match rejected", "10:00", 30, false, ReasonBooked},
		{"overlap rejected", "10:30", 60, false, ReasonOverlap},
		{"after existing accepted", "11:00", 60, true, ""},
		{"before opening", "08:00", 30, false, ReasonClosed},
		{"at closing", "17:00", 30, false, ReasonClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.CheckAvailability(context.Background(), f.doctorID, aMonday, MustTimeOfDay(tt.at), tt.duration)
			if err != nil {
				t.Fatalf("CheckAvailability: %v", err)
			}
			if got.Available != tt.available {
				t.Errorf("available = %v, want %v (reason %q)", got.Available, tt.available, got.Reason)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestCheckAvailabilityClosedDay(t *testing.T) {
	f := newFixture(t)
	sunday := aMonday.AddDate(0, 0, 6)

	got, err := f.svc.CheckAvailability(context.Background(), f.doctorID, sunday, MustTimeOfDay("10:00"), 30)
	if err != nil {
		t.Fatal(err)
	}
	if got.Available || got.Reason != ReasonClosed {
		t.Errorf("got %+v, want closed rejection", got)
	}
}

func TestCancelledAppointmentDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	f.seedAppointment(t, "10:00", 60, StatusCancelled)

	got, err := f.svc.CheckAvailability(context.Background(), f.doctorID, aMonday, MustTimeOfDay("10:00"), 60)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Available {
		t.Errorf("cancelled appointment should not block: %+v", got)
	}
}

// -- Booking --

func TestBookSuccess(t *testing.T) {
	f := newFixture(t)

	appt, err := f.svc.Book(context.Background(), BookingRequest{
		DoctorID:  f.doctorID,
		PatientID: f.patient,
		Date:      aMonday,
		Start:     MustTimeOfDay("09:30"),
		Reason:    "checkup",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if appt.Status != StatusScheduled {
		t.Errorf("status = %q, want scheduled", appt.Status)
	}
	if appt.Duration != DefaultDuration {
		t.Errorf("duration = %d, want default %d", appt.Duration, DefaultDuration)
	}
	if appt.TotalAmount != 6000 || appt.ConsultationFee != 5000 || appt.RegistrationFee != 1000 {
		t.Errorf("fees = %d/%d/%d, want 5000/1000/6000",
			appt.ConsultationFee, appt.RegistrationFee, appt.TotalAmount)
	}
	if f.doctors.counters[f.doctorID] != 1 {
		t.Errorf("counter = %d, want 1", f.doctors.counters[f.doctorID])
	}
}

func TestBookRejectsConflicts(t *testing.T) {
	f := newFixture(t)
	f.seedAppointment(t, "10:00", 60, StatusConfirmed)

	tests := []struct {
		name    string
		at      string
		dur     int
		wantErr error
	}{
		{"same start", "10:00", 30, ErrSlotTaken},
		{"overlapping", "10:30", 60, ErrSlotOverlap},
		{"outside hours", "18:00", 60, ErrClinicClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Book(context.Background(), BookingRequest{
				DoctorID:  f.doctorID,
				PatientID: f.patient,
				Date:      aMonday,
				Start:     MustTimeOfDay(tt.at),
				Duration:  tt.dur,
				Reason:    "checkup",
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if !IsRejection(err) {
				t.Errorf("conflict should classify as business rejection")
			}
		})
	}
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Book(context.Background(), BookingRequest{
		DoctorID: f.doctorID, PatientID: f.patient, Date: aMonday,
		Start: MustTimeOfDay("09:00"), Duration: 20, Reason: "x",
	})
	if !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("duration 20: err = %v, want ErrInvalidDuration", err)
	}

	_, err = f.svc.Book(context.Background(), BookingRequest{
		DoctorID: uuid.New(), PatientID: f.patient, Date: aMonday,
		Start: MustTimeOfDay("09:00"), Reason: "x",
	})
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("unknown doctor: err = %v", err)
	}

	_, err = f.svc.Book(context.Background(), BookingRequest{
		DoctorID: f.doctorID, PatientID: uuid.New(), Date: aMonday,
		Start: MustTimeOfDay("09:00"), Reason: "x",
	})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("unknown patient: err = %v", err)
	}
}

func TestBookUnapprovedDoctor(t *testing.T) {
	f := newFixture(t)
	f.doctors.doctors[f.doctorID].Approved = false

	_, err := f.svc.Book(context.Background(), BookingRequest{
		DoctorID: f.doctorID, PatientID: f.patient, Date: aMonday,
		Start: MustTimeOfDay("09:00"), Reason: "x",
	})
	if !errors.Is(err, ErrDoctorNotApproved) {
		t.Errorf("err = %v, want ErrDoctorNotApproved", err)
	}
}

func TestBookAfterCancellationSucceeds(t *testing.T) {
	f := newFixture(t)
	a := f.seedAppointment(t, "10:00", 60, StatusScheduled)
	if err := f.svc.UpdateStatus(context.Background(), a.ID, StatusCancelled); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Book(context.Background(), BookingRequest{
		DoctorID: f.doctorID, PatientID: f.patient, Date: aMonday,
		Start: MustTimeOfDay("10:00"), Reason: "retry",
	}); err != nil {
		t.Fatalf("booking over a cancelled appointment should succeed: %v", err)
	}
}

// Two concurrent requests for the exact same slot: exactly one wins, the
// loser gets a rejection, never two rows and never two failures.
func TestBookConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Book(context.Background(), BookingRequest{
				DoctorID:  f.doctorID,
				PatientID: f.patient,
				Date:      aMonday,
				Start:     MustTimeOfDay("10:00"),
				Reason:    "race",
			})
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrSlotOverlap):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins=%d losses=%d, want exactly one of each", wins, losses)
	}

	booked, _ := f.appts.ListForDoctorDate(context.Background(), f.doctorID, aMonday)
	if len(booked) != 1 {
		t.Fatalf("store holds %d live appointments, want 1", len(booked))
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(t)
	a := f.seedAppointment(t, "10:00", 30, StatusScheduled)

	if err := f.svc.UpdateStatus(context.Background(), a.ID, "sleeping"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
	if err := f.svc.UpdateStatus(context.Background(), uuid.New(), StatusConfirmed); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("err = %v, want ErrAppointmentNotFound", err)
	}
	if err := f.svc.UpdateStatus(context.Background(), a.ID, StatusConfirmed); err != nil {
		t.Errorf("valid transition failed: %v", err)
	}
}
