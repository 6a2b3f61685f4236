package service

import (
	"context"
	"time"

	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/internal/domain/repository"

	"github.com/google/uuid"
)

// IsAvailable reports whether [start, end) is free of every appointment in
// existing. Abutting intervals do not conflict.
func IsAvailable(existing []entity.Appointment, start, end time.Time) bool {
	for _, appointment := range existing {
		if appointment.Overlaps(start, end) {
			return false
		}
	}
	return true
}

// AvailabilityChecker answers availability questions against the appointment store.
type AvailabilityChecker struct {
	appointmentRepo repository.AppointmentRepository
}

func NewAvailabilityChecker(appointmentRepo repository.AppointmentRepository) *AvailabilityChecker {
	return &AvailabilityChecker{appointmentRepo: appointmentRepo}
}

// IsAvailable scans every appointment of the doctor. The caller guarantees start <= end.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, start, end time.Time, doctorID uuid.UUID) (bool, error) {
	existing, err := c.appointmentRepo.FindByDoctorID(ctx, doctorID)
	if err != nil {
		return false, err
	}
	return IsAvailable(existing, start, end), nil
}
