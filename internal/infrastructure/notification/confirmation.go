package notification

import (
	"context"
	"fmt"
	"time"

	"clinic-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

// Confirmation is the payload handed to a Sender.
type Confirmation struct {
	AppointmentID    uuid.UUID `json:"appointment_id"`
	DoctorID         uuid.UUID `json:"doctor_id"`
	DoctorName       string    `json:"doctor_name,omitempty"`
	UserID           uuid.UUID `json:"user_id"`
	Email            string    `json:"email"`
	AppointmentStart time.Time `json:"appointment_start"`
	AppointmentEnd   time.Time `json:"appointment_end"`
	BookedAt         time.Time `json:"booked_at"`
}

func NewConfirmation(caller entity.Caller, appointment entity.Appointment, now time.Time) Confirmation {
	c := Confirmation{
		AppointmentID:    appointment.ID,
		DoctorID:         appointment.DoctorID,
		UserID:           caller.UserID,
		Email:            caller.Email,
		AppointmentStart: appointment.AppointmentStart,
		AppointmentEnd:   appointment.AppointmentEnd,
		BookedAt:         now,
	}
	if appointment.Doctor.HasID() {
		c.DoctorName = appointment.Doctor.FullName()
	}
	return c
}

func (c Confirmation) Subject() string {
	return "Appointment confirmed"
}

func (c Confirmation) Body() string {
	doctor := c.DoctorName
	if doctor == "" {
		doctor = c.DoctorID.String()
	}
	return fmt.Sprintf(
		"Your appointment with %s is booked from %s to %s.\r\nReference: %s\r\n",
		doctor,
		c.AppointmentStart.Format(time.RFC1123Z),
		c.AppointmentEnd.Format(time.RFC1123Z),
		c.AppointmentID,
	)
}

// Sender delivers one confirmation synchronously.
type Sender interface {
	Send(ctx context.Context, c Confirmation) error
	Close() error
}
