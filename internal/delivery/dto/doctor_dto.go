package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// DoctorRequest is the body of both create and update. ID is required by
// neither: create rejects it, update without it falls back to create.
type DoctorRequest struct {
	ID                *uuid.UUID `json:"id"`
	FirstName         string     `json:"first_name" validate:"omitempty,max=100"`
	LastName          string     `json:"last_name" validate:"required,max=100"`
	Qualification     string     `json:"qualification" validate:"omitempty,max=255"`
	YearsOfExperience int        `json:"years_of_experience" validate:"gte=0,lte=80"`
	Speciality        string     `json:"speciality" validate:"omitempty,max=100"`
	ContactNum        int64      `json:"contact_num" validate:"gte=0"`
	Email             string     `json:"email" validate:"omitempty,email"`
	Gender            string     `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
}

// Response DTOs

type DoctorResponse struct {
	ID                uuid.UUID `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Qualification     string    `json:"qualification,omitempty"`
	YearsOfExperience int       `json:"years_of_experience"`
	Speciality        string    `json:"speciality,omitempty"`
	ContactNum        int64     `json:"contact_num,omitempty"`
	Email             string    `json:"email,omitempty"`
	Gender            string    `json:"gender"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
