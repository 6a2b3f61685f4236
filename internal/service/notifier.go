package service

import (
	"context"

	"clinic-booking-api/internal/domain/entity"
)

// Notifier delivers a booking confirmation to the caller who made it.
// Delivery is best-effort: the booking never depends on the returned error.
type Notifier interface {
	SendConfirmation(ctx context.Context, caller entity.Caller, appointment entity.Appointment) error
}

