package usecase

import (
	"context"
	"errors"

	"clinic-booking-api/internal/converter"
	"clinic-booking-api/internal/delivery/dto"
	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/internal/domain/repository"
	"clinic-booking-api/internal/service"
	"clinic-booking-api/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrAppointmentNotFound       = errors.New("appointment not found")
	ErrAppointmentDoctorNotFound = errors.New("doctor for appointment not found")
)

const appointmentEntityName = "appointment"

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, caller entity.Caller, req *dto.AppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateAppointment(ctx context.Context, caller entity.Caller, req *dto.AppointmentRequest) (*dto.AppointmentResponse, error)
	GetAllAppointments(ctx context.Context, caller entity.Caller) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, caller entity.Caller, id uuid.UUID) (*dto.AppointmentResponse, error)
	DeleteAppointment(ctx context.Context, caller entity.Caller, id uuid.UUID) error
}

type appointmentUsecase struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	validator       *service.BookingValidator
	availability    *service.AvailabilityChecker
	locker          service.DoctorLocker
	notifier        service.Notifier
	auditService    service.AuditService
	metrics         *metrics.Collector
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	validator *service.BookingValidator,
	availability *service.AvailabilityChecker,
	locker service.DoctorLocker,
	notifier service.Notifier,
	auditService service.AuditService,
	collector *metrics.Collector,
) AppointmentUsecase {
	if locker == nil {
		locker = service.NoopLocker{}
	}
	return &appointmentUsecase{
		log:             log,
		appointmentRepo: appointmentRepo,
		validator:       validator,
		availability:    availability,
		locker:          locker,
		notifier:        notifier,
		auditService:    auditService,
		metrics:         collector,
	}
}

func (u *appointmentUsecase) CreateAppointment(ctx context.Context, caller entity.Caller, req *dto.AppointmentRequest) (*dto.AppointmentResponse, error) {
	return u.create(ctx, caller, converter.AppointmentRequestToEntity(req))
}

// UpdateAppointment treats a candidate without id as a new booking.
func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, caller entity.Caller, req *dto.AppointmentRequest) (*dto.AppointmentResponse, error) {
	candidate := converter.AppointmentRequestToEntity(req)
	if !candidate.HasID() {
		return u.create(ctx, caller, candidate)
	}

	if err := u.validator.ValidateUpdate(candidate); err != nil {
		u.countBooking(metrics.ResultRejected)
		return nil, err
	}

	// The stored row is not excluded from the availability scan, so moving an
	// appointment onto a slot that overlaps its own current one is refused.
	saved, err := u.reserve(ctx, caller, candidate)
	if err != nil {
		return nil, err
	}
	u.countBooking(metrics.ResultUpdated)

	res := converter.AppointmentToResponse(u.reload(ctx, saved))
	_ = u.auditService.LogUpdate(ctx, &caller.UserID, entity.AuditActionAppointmentUpdate, appointmentEntityName, saved.ID.String(), nil, res)

	u.log.Infof("Appointment %s updated by %s", saved.ID, caller.UserID)
	return res, nil
}

func (u *appointmentUsecase) create(ctx context.Context, caller entity.Caller, candidate entity.Appointment) (*dto.AppointmentResponse, error) {
	if err := u.validator.ValidateCreate(candidate); err != nil {
		u.countBooking(metrics.ResultRejected)
		return nil, err
	}

	saved, err := u.reserve(ctx, caller, candidate)
	if err != nil {
		return nil, err
	}
	u.countBooking(metrics.ResultBooked)

	appointment := u.reload(ctx, saved)

	if err := u.notifier.SendConfirmation(ctx, caller, *appointment); err != nil {
		u.log.Warnf("Failed to send confirmation for appointment %s: %+v", appointment.ID, err)
	}

	res := converter.AppointmentToResponse(appointment)
	_ = u.auditService.LogCreate(ctx, &caller.UserID, entity.AuditActionAppointmentCreate, appointmentEntityName, appointment.ID.String(), res)

	u.log.Infof("Appointment %s booked with doctor %s by %s", appointment.ID, appointment.DoctorID, caller.UserID)
	return res, nil
}

// reserve runs the availability check and the save under the doctor's lock.
func (u *appointmentUsecase) reserve(ctx context.Context, caller entity.Caller, candidate entity.Appointment) (*entity.Appointment, error) {
	unlock, err := u.locker.Lock(ctx, candidate.DoctorID)
	if err != nil {
		result := metrics.ResultFailed
		if errors.Is(err, service.ErrDoctorBusy) {
			result = metrics.ResultConflict
		}
		u.countBooking(result)
		return nil, err
	}
	defer unlock()

	available, err := u.availability.IsAvailable(ctx, candidate.AppointmentStart, candidate.AppointmentEnd, candidate.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to check availability for doctor %s: %+v", candidate.DoctorID, err)
		u.countBooking(metrics.ResultFailed)
		return nil, err
	}
	if !available {
		u.countBooking(metrics.ResultConflict)
		return nil, service.ErrNotAvailable
	}

	appointment := candidate.WithAssignedUser(caller.UserID)
	if err := u.appointmentRepo.Save(ctx, &appointment); err != nil {
		if isForeignKeyError(err, "doctor") {
			u.countBooking(metrics.ResultRejected)
			return nil, ErrAppointmentDoctorNotFound
		}
		u.log.Warnf("Failed to save appointment: %+v", err)
		u.countBooking(metrics.ResultFailed)
		return nil, err
	}

	return &appointment, nil
}

// reload fetches the stored row with doctor and user attached. The saved value
// is returned unchanged when the read fails.
func (u *appointmentUsecase) reload(ctx context.Context, saved *entity.Appointment) *entity.Appointment {
	loaded, err := u.appointmentRepo.FindByID(ctx, saved.ID)
	if err != nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", saved.ID, err)
		return saved
	}
	if loaded == nil {
		return saved
	}
	return loaded
}

// GetAllAppointments returns every appointment to admins and only their own to everyone else.
func (u *appointmentUsecase) GetAllAppointments(ctx context.Context, caller entity.Caller) (*dto.AppointmentListResponse, error) {
	var (
		appointments []entity.Appointment
		err          error
	)
	if caller.IsAdmin() {
		appointments, err = u.appointmentRepo.FindAll(ctx)
	} else {
		appointments, err = u.appointmentRepo.FindByUserID(ctx, caller.UserID)
	}
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, caller entity.Caller, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

// DeleteAppointment is unconditional: a missing id still succeeds.
func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, caller entity.Caller, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return ErrForbidden
	}

	if err := u.appointmentRepo.DeleteByID(ctx, id); err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		return err
	}

	_ = u.auditService.LogDelete(ctx, &caller.UserID, entity.AuditActionAppointmentDelete, appointmentEntityName, id.String(), nil)

	u.log.Infof("Appointment %s deleted by %s", id, caller.UserID)
	return nil
}

func (u *appointmentUsecase) countBooking(result string) {
	if u.metrics != nil {
		u.metrics.AppointmentsTotal.WithLabelValues(result).Inc()
	}
}
