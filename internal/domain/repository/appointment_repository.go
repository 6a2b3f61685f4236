package repository

import (
	"context"

	"clinic-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentRepository is the persistence port for appointments.
// Find* methods return (nil, nil) when nothing matches a single-record lookup.
type AppointmentRepository interface {
	Save(ctx context.Context, appointment *entity.Appointment) error
	FindAll(ctx context.Context) ([]entity.Appointment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
