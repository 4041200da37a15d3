package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/booking"
)

var ErrInvalidInput = errors.New("invalid patient input")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Directory adapts the patient service to the booking engine's view.
type Directory struct {
	svc *Service
}

func NewDirectory(svc *Service) *Directory { return &Directory{svc: svc} }

func (d *Directory) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return d.svc.repo.Exists(ctx, id)
}

var _ booking.PatientDirectory = (*Directory)(nil)
