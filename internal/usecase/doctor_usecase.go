package usecase

import (
	"context"
	"errors"

	"clinic-booking-api/internal/converter"
	"clinic-booking-api/internal/delivery/dto"
	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/internal/domain/repository"
	"clinic-booking-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrDoctorHasAppointments = errors.New("doctor still has appointments")
)

const doctorEntityName = "doctor"

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, caller entity.Caller, req *dto.DoctorRequest) (*dto.DoctorResponse, error)
	UpdateDoctor(ctx context.Context, caller entity.Caller, req *dto.DoctorRequest) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, caller entity.Caller, id uuid.UUID) error
}

type doctorUsecase struct {
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	auditService service.AuditService
}

func NewDoctorUsecase(
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		log:          log,
		doctorRepo:   doctorRepo,
		auditService: auditService,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, caller entity.Caller, req *dto.DoctorRequest) (*dto.DoctorResponse, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	doctor := converter.DoctorRequestToEntity(req)
	if doctor.HasID() {
		return nil, service.ErrDoctorHasID
	}
	return u.save(ctx, caller, doctor, entity.AuditActionDoctorCreate)
}

// UpdateDoctor falls back to create without an id and upserts an unknown id.
func (u *doctorUsecase) UpdateDoctor(ctx context.Context, caller entity.Caller, req *dto.DoctorRequest) (*dto.DoctorResponse, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	doctor := converter.DoctorRequestToEntity(req)
	if !doctor.HasID() {
		return u.save(ctx, caller, doctor, entity.AuditActionDoctorCreate)
	}
	return u.save(ctx, caller, doctor, entity.AuditActionDoctorUpdate)
}

func (u *doctorUsecase) save(ctx context.Context, caller entity.Caller, doctor entity.Doctor, action string) (*dto.DoctorResponse, error) {
	if err := u.doctorRepo.Save(ctx, &doctor); err != nil {
		u.log.Warnf("Failed to save doctor: %+v", err)
		return nil, err
	}

	stored, err := u.doctorRepo.FindByID(ctx, doctor.ID)
	if err != nil {
		u.log.Warnf("Failed to reload doctor %s: %+v", doctor.ID, err)
		return nil, err
	}
	if stored != nil {
		doctor = *stored
	}

	res := converter.DoctorToResponse(&doctor)
	if action == entity.AuditActionDoctorCreate {
		_ = u.auditService.LogCreate(ctx, &caller.UserID, action, doctorEntityName, doctor.ID.String(), res)
	} else {
		_ = u.auditService.LogUpdate(ctx, &caller.UserID, action, doctorEntityName, doctor.ID.String(), nil, res)
	}

	u.log.Infof("Doctor %s saved by %s", doctor.ID, caller.UserID)
	return res, nil
}

func (u *doctorUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find all doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorToResponse(doctor), nil
}

// DeleteDoctor refuses while appointments still reference the doctor.
func (u *doctorUsecase) DeleteDoctor(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	if err := u.doctorRepo.DeleteByID(ctx, id); err != nil {
		if isForeignKeyError(err, "doctor") {
			return ErrDoctorHasAppointments
		}
		u.log.Warnf("Failed to delete doctor %s: %+v", id, err)
		return err
	}

	_ = u.auditService.LogDelete(ctx, &caller.UserID, entity.AuditActionDoctorDelete, doctorEntityName, id.String(), nil)

	u.log.Infof("Doctor %s deleted by %s", id, caller.UserID)
	return nil
}
