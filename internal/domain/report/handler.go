package report

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/domain/booking"
	"github.com/clinicbook/clinicbook/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the report endpoints. The webhook lives outside the
// authenticated group: its caller is a machine identified by signature, not a
// bearer token.
func (h *Handler) RegisterRoutes(api *echo.Group, webhooks *echo.Group) {
	webhooks.POST("/transcription", h.Transcription)
	api.GET("/appointments/:id/report", h.GetByAppointment)
}

func (h *Handler) Transcription(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	rep, err := h.svc.Ingest(c.Request().Context(), body, c.Request().Header.Get("X-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBadSignature):
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case errors.Is(err, booking.ErrAppointmentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) GetByAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	appt, err := h.svc.appts.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrAppointmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	sub := auth.UserIDFromContext(ctx)
	if !auth.HasRole(ctx, auth.RoleAdmin) &&
		sub != appt.PatientID.String() && sub != appt.DoctorID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "not a participant in this appointment")
	}

	rep, err := h.svc.GetByAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, rep)
}
