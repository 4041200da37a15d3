package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/platform/auth"
	"github.com/clinicbook/clinicbook/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors/:id/slots", h.ListSlots)

	api.POST("/appointments", h.Book, auth.RequireRole(auth.RolePatient))
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id/status", h.UpdateStatus, auth.RequireRole(auth.RoleDoctor))
}

const dateLayout = "2006-01-02"

// slotsResponse is the payload for GET /doctors/:id/slots.
type slotsResponse struct {
	Doctor         uuid.UUID `json:"doctor"`
	Date           string    `json:"date"`
	AvailableSlots []Slot    `json:"available_slots"`
}

func (h *Handler) ListSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	dateStr := c.QueryParam("date")
	if dateStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
	}

	slots, err := h.svc.GenerateSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		return mapBookingError(err)
	}

	return c.JSON(http.StatusOK, slotsResponse{
		Doctor:         doctorID,
		Date:           dateStr,
		AvailableSlots: slots,
	})
}

// bookRequest is the JSON body for POST /appointments.
type bookRequest struct {
	DoctorID  string `json:"doctor_id" validate:"required,uuid"`
	PatientID string `json:"patient_id" validate:"omitempty,uuid"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required"`
	Duration  int    `json:"duration_minutes" validate:"omitempty,min=30,max=120"`
	Reason    string `json:"reason" validate:"required"`
	Type      string `json:"type" validate:"omitempty,oneof=consultation follow_up emergency"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	// Patients book for themselves; only admins may name another patient.
	patientIDStr := req.PatientID
	if !auth.HasRole(ctx, auth.RoleAdmin) || patientIDStr == "" {
		patientIDStr = auth.UserIDFromContext(ctx)
	}
	patientID, err := uuid.Parse(patientIDStr)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	doctorID, _ := uuid.Parse(req.DoctorID)
	date, _ := time.Parse(dateLayout, req.Date)
	start, err := ParseTimeOfDay(req.Time)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	appt, err := h.svc.Book(ctx, BookingRequest{
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      date,
		Start:     start,
		Duration:  req.Duration,
		Reason:    req.Reason,
		Type:      req.Type,
	})
	if err != nil {
		return mapBookingError(err)
	}

	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	appt, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return mapBookingError(err)
	}
	if !canAccessAppointment(c, appt) {
		return echo.NewHTTPError(http.StatusForbidden, "not a participant in this appointment")
	}

	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if doctorIDStr := c.QueryParam("doctor_id"); doctorIDStr != "" {
		doctorID, err := uuid.Parse(doctorIDStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		if !auth.HasRole(ctx, auth.RoleDoctor) {
			return echo.NewHTTPError(http.StatusForbidden, "doctor role required")
		}
		if doctorID.String() != auth.UserIDFromContext(ctx) && !auth.HasRole(ctx, auth.RoleAdmin) {
			return echo.NewHTTPError(http.StatusForbidden, "doctors may only list their own appointments")
		}
		items, total, err := h.svc.ListByDoctor(ctx, doctorID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	if patientIDStr := c.QueryParam("patient_id"); patientIDStr != "" {
		patientID, err := uuid.Parse(patientIDStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		if patientID.String() != auth.UserIDFromContext(ctx) && !auth.HasRole(ctx, auth.RoleAdmin) {
			return echo.NewHTTPError(http.StatusForbidden, "patients may only list their own appointments")
		}
		items, total, err := h.svc.ListByPatient(ctx, patientID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	return echo.NewHTTPError(http.StatusBadRequest, "doctor_id or patient_id query parameter is required")
}

// statusRequest is the JSON body for PUT /appointments/:id/status.
type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed in_progress completed cancelled no_show"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return mapBookingError(err)
	}

	appt, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return mapBookingError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

// canAccessAppointment allows the booked patient, the booked doctor, and
// admins.
func canAccessAppointment(c echo.Context, appt *Appointment) bool {
	ctx := c.Request().Context()
	sub := auth.UserIDFromContext(ctx)
	if auth.HasRole(ctx, auth.RoleAdmin) {
		return true
	}
	return sub == appt.PatientID.String() || sub == appt.DoctorID.String()
}

// mapBookingError translates engine errors into HTTP responses: missing
// records are 404s, business-rule rejections and validation failures are 400s
// carrying their reason, anything else is a generic 500.
func mapBookingError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrDoctorNotFound),
		errors.Is(err, ErrPatientNotFound),
		errors.Is(err, ErrAppointmentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case IsRejection(err),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
