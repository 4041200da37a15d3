package report

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/clinicbook/internal/domain/booking"
)

// SignPayload computes an HMAC-SHA256 signature of the payload using the given
// secret, returning the hex-encoded result.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature returns true when the hex-encoded signature matches the
// HMAC-SHA256 of payload under the given secret.
func VerifySignature(payload []byte, secret, signature string) bool {
	expected := SignPayload(payload, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Appointments is the slice of the booking engine the report flow needs.
type Appointments interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type Service struct {
	repo   Repository
	appts  Appointments
	secret string
	log    zerolog.Logger
}

func NewService(repo Repository, appts Appointments, secret string, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		appts:  appts,
		secret: secret,
		log:    log.With().Str("component", "report").Logger(),
	}
}

// transcriptionPayload is the webhook body sent by the transcription service.
type transcriptionPayload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Transcript    string    `json:"transcript"`
	Summary       string    `json:"summary"`
}

// Ingest verifies the webhook signature against the raw body, stores the
// report for the named appointment, and marks the appointment completed.
// Completion failures after the report is stored are logged, not fatal: the
// report is the payload of record, the status a derived convenience.
func (s *Service) Ingest(ctx context.Context, body []byte, signature string) (*ConsultationReport, error) {
	if !VerifySignature(body, s.secret, signature) {
		return nil, ErrBadSignature
	}

	var p transcriptionPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if p.AppointmentID == uuid.Nil {
		return nil, fmt.Errorf("decode payload: appointment_id is required")
	}

	if _, err := s.appts.GetAppointment(ctx, p.AppointmentID); err != nil {
		return nil, err
	}

	rep := &ConsultationReport{
		AppointmentID: p.AppointmentID,
		Transcript:    p.Transcript,
		Summary:       p.Summary,
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	if err := s.appts.UpdateStatus(ctx, p.AppointmentID, booking.StatusCompleted); err != nil {
		s.log.Warn().Err(err).
			Str("appointment_id", p.AppointmentID.String()).
			Msg("report stored but appointment not marked completed")
	}
	return rep, nil
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*ConsultationReport, error) {
	return s.repo.GetByAppointment(ctx, appointmentID)
}
