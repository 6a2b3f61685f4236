package repository

import (
	"context"

	"clinic-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

type DoctorRepository interface {
	Save(ctx context.Context, doctor *entity.Doctor) error
	FindAll(ctx context.Context) ([]entity.Doctor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
