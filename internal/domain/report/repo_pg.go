package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) Create(ctx context.Context, rep *ConsultationReport) error {
	rep.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO consultation_report (id, appointment_id, transcript, summary)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (appointment_id) DO UPDATE
			SET transcript = EXCLUDED.transcript, summary = EXCLUDED.summary
		RETURNING id, created_at`,
		rep.ID, rep.AppointmentID, rep.Transcript, rep.Summary,
	).Scan(&rep.ID, &rep.CreatedAt)
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*ConsultationReport, error) {
	var rep ConsultationReport
	err := r.pool.QueryRow(ctx, `
		SELECT id, appointment_id, transcript, summary, created_at
		FROM consultation_report WHERE appointment_id = $1`, appointmentID,
	).Scan(&rep.ID, &rep.AppointmentID, &rep.Transcript, &rep.Summary, &rep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}
