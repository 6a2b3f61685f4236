package converter

import (
	"clinic-booking-api/internal/delivery/dto"
	"clinic-booking-api/internal/domain/entity"

	"github.com/google/uuid"
)

// DoctorRequestToEntity maps a request onto a doctor value. A missing id stays uuid.Nil.
func DoctorRequestToEntity(req *dto.DoctorRequest) entity.Doctor {
	doctor := entity.Doctor{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Qualification:     req.Qualification,
		YearsOfExperience: req.YearsOfExperience,
		Speciality:        req.Speciality,
		ContactNum:        req.ContactNum,
		Email:             req.Email,
		Gender:            entity.Gender(req.Gender),
	}
	if req.ID != nil {
		doctor.ID = *req.ID
	}
	return doctor
}

func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:                doctor.ID,
		FirstName:         doctor.FirstName,
		LastName:          doctor.LastName,
		Qualification:     doctor.Qualification,
		YearsOfExperience: doctor.YearsOfExperience,
		Speciality:        doctor.Speciality,
		ContactNum:        doctor.ContactNum,
		Email:             doctor.Email,
		Gender:            string(doctor.Gender),
		CreatedAt:         doctor.CreatedAt,
		UpdatedAt:         doctor.UpdatedAt,
	}
}

func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}

func doctorSummary(id uuid.UUID, doctor entity.Doctor) dto.AppointmentDoctor {
	summary := dto.AppointmentDoctor{ID: id}
	if doctor.HasID() {
		summary.FullName = doctor.FullName()
		summary.Speciality = doctor.Speciality
	}
	return summary
}
