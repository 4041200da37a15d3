package booking

import "errors"

// Rejection reasons surfaced to callers. The wording is part of the API
// contract; clients match on these strings.
const (
	ReasonClosed    = "Clinic is closed on this day/time"
	ReasonBooked    = "Time slot is already booked"
	ReasonOverlap   = "Time slot overlaps with existing appointment"
	ReasonBreakTime = "Break time"
)

// Common errors returned by the booking engine. The business-rule rejections
// carry their client-facing reason as the error text.
var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorNotApproved   = errors.New("doctor is not approved for bookings")
	ErrInvalidDuration     = errors.New("duration must be between 30 and 120 minutes")
	ErrInvalidStatus       = errors.New("invalid appointment status")

	ErrClinicClosed = errors.New(ReasonClosed)
	ErrSlotTaken    = errors.New(ReasonBooked)
	ErrSlotOverlap  = errors.New(ReasonOverlap)
)

// IsRejection reports whether err is an expected business-rule rejection (as
// opposed to a validation failure, a missing record, or an infrastructure
// fault). Rejections are surfaced with their reason and are never retried
// server-side.
func IsRejection(err error) bool {
	return errors.Is(err, ErrClinicClosed) ||
		errors.Is(err, ErrSlotTaken) ||
		errors.Is(err, ErrSlotOverlap) ||
		errors.Is(err, ErrDoctorNotApproved)
}
