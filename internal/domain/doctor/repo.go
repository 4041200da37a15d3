package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/booking"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	// List returns approved doctors only when approvedOnly is set, optionally
	// filtered by a name/specialty search term.
	List(ctx context.Context, approvedOnly bool, search string, limit, offset int) ([]*Doctor, int, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, schedule booking.WeeklySchedule) error
	UpdateFees(ctx context.Context, id uuid.UUID, consultation, registration int) error
	UpdateApproval(ctx context.Context, id uuid.UUID, status string) error
	IncrementAppointments(ctx context.Context, id uuid.UUID) error
}
