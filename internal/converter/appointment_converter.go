package converter

import (
	"clinic-booking-api/internal/delivery/dto"
	"clinic-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentRequestToEntity builds the candidate. The owner is never taken
// from the request.
func AppointmentRequestToEntity(req *dto.AppointmentRequest) entity.Appointment {
	id := uuid.Nil
	if req.ID != nil {
		id = *req.ID
	}
	return entity.NewAppointment(id, req.DoctorID, req.AppointmentStart, req.AppointmentEnd)
}

func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	res := &dto.AppointmentResponse{
		ID:               appointment.ID,
		AppointmentStart: appointment.AppointmentStart,
		AppointmentEnd:   appointment.AppointmentEnd,
		Doctor:           doctorSummary(appointment.DoctorID, appointment.Doctor),
		CreatedAt:        appointment.CreatedAt,
		UpdatedAt:        appointment.UpdatedAt,
	}

	if appointment.UserID != uuid.Nil {
		res.User = &dto.AppointmentPerson{
			ID:       appointment.UserID,
			Email:    appointment.User.Email,
			FullName: appointment.User.FullName,
		}
	}

	return res
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
