package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// AppointmentRequest carries a candidate slot. Timestamps are RFC 3339 and
// keep the offset the client sent.
type AppointmentRequest struct {
	ID               *uuid.UUID `json:"id"`
	AppointmentStart time.Time  `json:"appointment_start" validate:"required"`
	AppointmentEnd   time.Time  `json:"appointment_end" validate:"required"`
	DoctorID         uuid.UUID  `json:"doctor_id" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID               uuid.UUID          `json:"id"`
	AppointmentStart time.Time          `json:"appointment_start"`
	AppointmentEnd   time.Time          `json:"appointment_end"`
	Doctor           AppointmentDoctor  `json:"doctor"`
	User             *AppointmentPerson `json:"user,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

type AppointmentDoctor struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name,omitempty"`
	Speciality string    `json:"speciality,omitempty"`
}

type AppointmentPerson struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email,omitempty"`
	FullName string    `json:"full_name,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
