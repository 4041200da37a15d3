package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicbook/clinicbook/internal/domain/booking"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `id, name, specialty, email, phone, bio, approval_status,
	consultation_fee, registration_fee, total_appointments, schedule, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var schedule []byte
	err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.Email, &d.Phone, &d.Bio, &d.ApprovalStatus,
		&d.ConsultationFee, &d.RegistrationFee, &d.TotalAppointments, &schedule, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &d.Schedule); err != nil {
			return nil, fmt.Errorf("decode schedule: %w", err)
		}
	}
	return &d, nil
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	schedule, err := json.Marshal(d.Schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO doctor (id, name, specialty, email, phone, bio, approval_status,
			consultation_fee, registration_fee, schedule)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		d.ID, d.Name, d.Specialty, d.Email, d.Phone, d.Bio, d.ApprovalStatus,
		d.ConsultationFee, d.RegistrationFee, schedule,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.pool.QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

func (r *repoPG) List(ctx context.Context, approvedOnly bool, search string, limit, offset int) ([]*Doctor, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	if approvedOnly {
		where += fmt.Sprintf(` AND approval_status = $%d`, len(args)+1)
		args = append(args, ApprovalApproved)
	}
	if search != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR specialty ILIKE $%d)`, len(args)+1, len(args)+1)
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctor `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM doctor %s ORDER BY name LIMIT $%d OFFSET $%d`,
		doctorCols, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpdateSchedule(ctx context.Context, id uuid.UUID, schedule booking.WeeklySchedule) error {
	encoded, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	return r.exec(ctx, `UPDATE doctor SET schedule = $2, updated_at = NOW() WHERE id = $1`, id, encoded)
}

func (r *repoPG) UpdateFees(ctx context.Context, id uuid.UUID, consultation, registration int) error {
	return r.exec(ctx, `
		UPDATE doctor SET consultation_fee = $2, registration_fee = $3, updated_at = NOW()
		WHERE id = $1`, id, consultation, registration)
}

func (r *repoPG) UpdateApproval(ctx context.Context, id uuid.UUID, status string) error {
	return r.exec(ctx, `UPDATE doctor SET approval_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *repoPG) IncrementAppointments(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `UPDATE doctor SET total_appointments = total_appointments + 1 WHERE id = $1`, id)
}

func (r *repoPG) exec(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
