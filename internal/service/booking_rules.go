package service

import (
	"time"

	"clinic-booking-api/internal/domain/entity"
)

// Rejection codes exposed to API clients.
const (
	RejectionIDExists         = "idexists"
	RejectionStartInPast      = "startinpast"
	RejectionStartAfterEnd    = "startafterend"
	RejectionDurationExceeded = "durationexceeded"
	RejectionOutsideHours     = "outsidehours"
	RejectionNotAvailable     = "notavailable"
)

const (
	maxAppointmentHours = 1
	openingHour         = 11
	closingHour         = 18
)

// BookingRejection is a caller-facing refusal. The message is returned verbatim.
type BookingRejection struct {
	Code    string
	Message string
}

func (r *BookingRejection) Error() string {
	return r.Message
}

var (
	ErrAppointmentHasID = &BookingRejection{Code: RejectionIDExists, Message: "A new appointment cannot already have an ID"}
	ErrStartInPast      = &BookingRejection{Code: RejectionStartInPast, Message: "Start time cannot be in the past"}
	ErrStartAfterEnd    = &BookingRejection{Code: RejectionStartAfterEnd, Message: "Start time cannot be more than end time"}
	ErrDurationExceeded = &BookingRejection{Code: RejectionDurationExceeded, Message: "Appointments cannot be made for more than 1 hour."}
	ErrOutsideHours     = &BookingRejection{Code: RejectionOutsideHours, Message: "Appointment can only be booked between 11 AM to 6 PM."}
	ErrNotAvailable     = &BookingRejection{Code: RejectionNotAvailable, Message: "Appointment not available for the selected time and day."}
	ErrDoctorHasID      = &BookingRejection{Code: RejectionIDExists, Message: "A new doctor cannot already have an ID"}
)

// BookingValidator runs the business rules a candidate must pass before the
// availability check. The first failing rule wins.
type BookingValidator struct {
	now func() time.Time
}

func NewBookingValidator(now func() time.Time) *BookingValidator {
	if now == nil {
		now = time.Now
	}
	return &BookingValidator{now: now}
}

// ValidateCreate applies every rule, starting with the identity check.
func (v *BookingValidator) ValidateCreate(candidate entity.Appointment) error {
	if candidate.HasID() {
		return ErrAppointmentHasID
	}
	return v.validateSlot(candidate)
}

// ValidateUpdate skips the identity check since updates carry an id.
func (v *BookingValidator) ValidateUpdate(candidate entity.Appointment) error {
	return v.validateSlot(candidate)
}

func (v *BookingValidator) validateSlot(candidate entity.Appointment) error {
	start, end := candidate.AppointmentStart, candidate.AppointmentEnd
	if start.Before(v.now()) {
		return ErrStartInPast
	}
	if start.After(end) {
		return ErrStartAfterEnd
	}
	// whole elapsed hours, truncated
	if int(candidate.Duration()/time.Hour) > maxAppointmentHours {
		return ErrDurationExceeded
	}
	if !withinBusinessHours(start, end) {
		return ErrOutsideHours
	}
	return nil
}

// withinBusinessHours reads the wall clock of each instant in its own location.
// The window closes at 18:00 sharp, so an end of 18:30 is refused. Comparing
// the hour alone would let anything up to 18:59 through.
func withinBusinessHours(start, end time.Time) bool {
	if start.Hour() < openingHour {
		return false
	}
	if end.Hour() > closingHour {
		return false
	}
	if end.Hour() == closingHour && (end.Minute() > 0 || end.Second() > 0 || end.Nanosecond() > 0) {
		return false
	}
	return true
}
