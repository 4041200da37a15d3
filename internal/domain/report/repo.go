package report

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *ConsultationReport) error
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*ConsultationReport, error)
}
