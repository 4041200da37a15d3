package doctor

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicbook/clinicbook/internal/domain/booking"
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
	api.GET("/doctors", h.List)
	api.GET("/doctors/:id", h.Get)
	api.POST("/doctors", h.Create, auth.RequireRole(auth.RoleAdmin))
	api.PUT("/doctors/:id/schedule", h.UpdateSchedule, auth.RequireRole(auth.RoleDoctor))
	api.PUT("/doctors/:id/fees", h.UpdateFees, auth.RequireRole(auth.RoleDoctor))
	api.PUT("/doctors/:id/approval", h.UpdateApproval, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	// Non-admin callers only ever see approved doctors.
	approvedOnly := true
	if auth.HasRole(c.Request().Context(), auth.RoleAdmin) && c.QueryParam("include_pending") == "true" {
		approvedOnly = false
	}

	items, total, err := h.svc.List(c.Request().Context(), approvedOnly, c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapDoctorError(err)
	}
	return c.JSON(http.StatusOK, d)
}

// createRequest is the JSON body for POST /doctors.
type createRequest struct {
	Name            string                 `json:"name" validate:"required"`
	Specialty       string                 `json:"specialty" validate:"required"`
	Email           string                 `json:"email" validate:"required,email"`
	Phone           string                 `json:"phone"`
	Bio             string                 `json:"bio"`
	ConsultationFee int                    `json:"consultation_fee" validate:"min=0"`
	RegistrationFee int                    `json:"registration_fee" validate:"min=0"`
	Schedule        booking.WeeklySchedule `json:"schedule"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	d := &Doctor{
		Name:            req.Name,
		Specialty:       req.Specialty,
		Email:           req.Email,
		Phone:           req.Phone,
		Bio:             req.Bio,
		ConsultationFee: req.ConsultationFee,
		RegistrationFee: req.RegistrationFee,
		Schedule:        req.Schedule,
	}
	if err := h.svc.Create(c.Request().Context(), d); err != nil {
		return mapDoctorError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateSchedule(c echo.Context) error {
	id, err := h.ownDoctorID(c)
	if err != nil {
		return err
	}

	var schedule booking.WeeklySchedule
	if err := c.Bind(&schedule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateSchedule(c.Request().Context(), id, schedule); err != nil {
		return mapDoctorError(err)
	}

	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapDoctorError(err)
	}
	return c.JSON(http.StatusOK, d)
}

// feesRequest is the JSON body for PUT /doctors/:id/fees.
type feesRequest struct {
	ConsultationFee int `json:"consultation_fee" validate:"min=0"`
	RegistrationFee int `json:"registration_fee" validate:"min=0"`
}

func (h *Handler) UpdateFees(c echo.Context) error {
	id, err := h.ownDoctorID(c)
	if err != nil {
		return err
	}

	var req feesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.svc.UpdateFees(c.Request().Context(), id, req.ConsultationFee, req.RegistrationFee); err != nil {
		return mapDoctorError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// approvalRequest is the JSON body for PUT /doctors/:id/approval.
type approvalRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func (h *Handler) UpdateApproval(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req approvalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.svc.UpdateApproval(c.Request().Context(), id, req.Status); err != nil {
		return mapDoctorError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ownDoctorID parses the :id param and, for non-admin callers, checks the
// caller is operating on their own record.
func (h *Handler) ownDoctorID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if !auth.HasRole(ctx, auth.RoleAdmin) && auth.UserIDFromContext(ctx) != id.String() {
		return uuid.Nil, echo.NewHTTPError(http.StatusForbidden, "doctors may only modify their own record")
	}
	return id, nil
}

func mapDoctorError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidApproval), errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
