package entity

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a booked slot with a doctor. Values are treated as immutable:
// identity and ownership change only through the With* transitions.
type Appointment struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentStart time.Time `gorm:"column:appointment_start;type:timestamptz;not null" json:"appointment_start"`
	AppointmentEnd   time.Time `gorm:"column:appointment_end;type:timestamptz;not null" json:"appointment_end"`
	DoctorID         uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// NewAppointment builds a candidate appointment. id may be uuid.Nil for a new booking.
func NewAppointment(id uuid.UUID, doctorID uuid.UUID, start, end time.Time) Appointment {
	return Appointment{
		ID:               id,
		DoctorID:         doctorID,
		AppointmentStart: start,
		AppointmentEnd:   end,
	}
}

// HasID reports whether the store has already assigned an identity.
func (a Appointment) HasID() bool {
	return a.ID != uuid.Nil
}

// WithID returns a copy carrying the given identity.
func (a Appointment) WithID(id uuid.UUID) Appointment {
	a.ID = id
	return a
}

// WithAssignedUser returns a copy owned by userID.
func (a Appointment) WithAssignedUser(userID uuid.UUID) Appointment {
	a.UserID = userID
	return a
}

func (a Appointment) Duration() time.Duration {
	return a.AppointmentEnd.Sub(a.AppointmentStart)
}

// Overlaps uses half-open intervals: abutting slots do not overlap.
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.AppointmentStart.Before(end) && start.Before(a.AppointmentEnd)
}
