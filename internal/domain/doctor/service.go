package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/clinicbook/internal/domain/booking"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "doctor").Logger()}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if d.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if d.ApprovalStatus == "" {
		d.ApprovalStatus = ApprovalPending
	}
	if !validApprovalStatuses[d.ApprovalStatus] {
		return fmt.Errorf("%w: %q", ErrInvalidApproval, d.ApprovalStatus)
	}
	if err := ValidateSchedule(d.Schedule); err != nil {
		return err
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, approvedOnly bool, search string, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, approvedOnly, search, limit, offset)
}

func (s *Service) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule booking.WeeklySchedule) error {
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}
	return s.repo.UpdateSchedule(ctx, id, schedule)
}

func (s *Service) UpdateFees(ctx context.Context, id uuid.UUID, consultation, registration int) error {
	if consultation < 0 || registration < 0 {
		return fmt.Errorf("%w: fees must be non-negative", ErrInvalidInput)
	}
	return s.repo.UpdateFees(ctx, id, consultation, registration)
}

func (s *Service) UpdateApproval(ctx context.Context, id uuid.UUID, status string) error {
	if !validApprovalStatuses[status] {
		return fmt.Errorf("%w: %q", ErrInvalidApproval, status)
	}
	return s.repo.UpdateApproval(ctx, id, status)
}

// ValidateSchedule rejects weekly templates that could never generate a sane
// slot grid. Invalid configurations are refused here, at save time; the slot
// generator trusts what the directory hands it.
func ValidateSchedule(w booking.WeeklySchedule) error {
	days := []struct {
		name string
		day  booking.DaySchedule
	}{
		{"monday", w.Monday}, {"tuesday", w.Tuesday}, {"wednesday", w.Wednesday},
		{"thursday", w.Thursday}, {"friday", w.Friday}, {"saturday", w.Saturday},
		{"sunday", w.Sunday},
	}
	for _, d := range days {
		if !d.day.IsOpen {
			continue
		}
		if !d.day.Start.Valid() || !d.day.End.Valid() {
			return fmt.Errorf("%w: %s open/close times out of range", ErrInvalidInput, d.name)
		}
		if d.day.Start >= d.day.End {
			return fmt.Errorf("%w: %s opening time must be before closing time", ErrInvalidInput, d.name)
		}
		if d.day.SlotDuration < 0 {
			return fmt.Errorf("%w: %s slot duration must be positive", ErrInvalidInput, d.name)
		}
		if b := d.day.Break; b != nil {
			if b.Start >= b.End {
				return fmt.Errorf("%w: %s break start must be before break end", ErrInvalidInput, d.name)
			}
			if b.Start < d.day.Start || b.End > d.day.End {
				return fmt.Errorf("%w: %s break must fall within opening hours", ErrInvalidInput, d.name)
			}
		}
	}
	return nil
}

// Directory adapts the doctor service to the view the booking engine consumes.
type Directory struct {
	svc *Service
}

func NewDirectory(svc *Service) *Directory { return &Directory{svc: svc} }

func (d *Directory) DoctorInfo(ctx context.Context, id uuid.UUID) (*booking.DoctorInfo, error) {
	doc, err := d.svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, booking.ErrDoctorNotFound
		}
		return nil, err
	}
	return &booking.DoctorInfo{
		ID:              doc.ID,
		Name:            doc.Name,
		Approved:        doc.Approved(),
		ConsultationFee: doc.ConsultationFee,
		RegistrationFee: doc.RegistrationFee,
		Schedule:        doc.Schedule,
	}, nil
}

func (d *Directory) IncrementAppointments(ctx context.Context, id uuid.UUID) error {
	return d.svc.repo.IncrementAppointments(ctx, id)
}

var _ booking.DoctorDirectory = (*Directory)(nil)
