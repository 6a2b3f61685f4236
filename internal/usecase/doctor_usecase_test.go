package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic-booking-api/internal/delivery/dto"
	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/internal/service"

	"github.com/google/uuid"
)

func doctorRequest() *dto.DoctorRequest {
	return &dto.DoctorRequest{
		FirstName:         "Grace",
		LastName:          "Hopper",
		Qualification:     "MD",
		YearsOfExperience: 12,
		Speciality:        "Cardiology",
		ContactNum:        6281234567,
		Email:             "grace@clinic.local",
		Gender:            string(entity.GenderFemale),
	}
}

// doctorTable behaves like the doctors table: inserts stamp created_at and
// updates keep the stored one.
func doctorTable(seed ...entity.Doctor) *fakeDoctorRepo {
	rows := make(map[uuid.UUID]entity.Doctor)
	for _, d := range seed {
		rows[d.ID] = d
	}
	return &fakeDoctorRepo{
		save: func(_ context.Context, d *entity.Doctor) error {
			if !d.HasID() {
				d.ID = uuid.New()
			}
			row := *d
			row.CreatedAt = testNow
			if prev, ok := rows[d.ID]; ok {
				row.CreatedAt = prev.CreatedAt
			}
			rows[d.ID] = row
			return nil
		},
		findByID: func(_ context.Context, id uuid.UUID) (*entity.Doctor, error) {
			row, ok := rows[id]
			if !ok {
				return nil, nil
			}
			return &row, nil
		},
	}
}

func TestCreateDoctor(t *testing.T) {
	audit := &recordingAudit{}
	var saved entity.Doctor
	repo := doctorTable()
	insert := repo.save
	repo.save = func(ctx context.Context, d *entity.Doctor) error {
		err := insert(ctx, d)
		saved = *d
		return err
	}
	uc := NewDoctorUsecase(quietLogger(), repo, audit)

	res, err := uc.CreateDoctor(context.Background(), admin(), doctorRequest())
	if err != nil {
		t.Fatalf("CreateDoctor() error = %v", err)
	}
	if res.ID != saved.ID || res.LastName != "Hopper" || res.Gender != "FEMALE" {
		t.Fatalf("response = %+v, saved = %+v", res, saved)
	}
	if !res.CreatedAt.Equal(testNow) {
		t.Fatalf("CreatedAt = %v, want %v", res.CreatedAt, testNow)
	}
	if got := audit.Actions(); len(got) != 1 || got[0] != entity.AuditActionDoctorCreate {
		t.Fatalf("audit actions = %v", got)
	}
}

func TestCreateDoctor_Rejects(t *testing.T) {
	uc := NewDoctorUsecase(quietLogger(), &fakeDoctorRepo{}, &recordingAudit{})

	if _, err := uc.CreateDoctor(context.Background(), user(), doctorRequest()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin CreateDoctor() error = %v, want %v", err, ErrForbidden)
	}

	req := doctorRequest()
	id := uuid.New()
	req.ID = &id
	_, err := uc.CreateDoctor(context.Background(), admin(), req)
	if !errors.Is(err, service.ErrDoctorHasID) {
		t.Fatalf("CreateDoctor() error = %v, want %v", err, service.ErrDoctorHasID)
	}
	if err.Error() != "A new doctor cannot already have an ID" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestUpdateDoctor_WithoutIDCreates(t *testing.T) {
	audit := &recordingAudit{}
	repo := doctorTable()
	insert := repo.save
	repo.save = func(ctx context.Context, d *entity.Doctor) error {
		if d.HasID() {
			t.Fatalf("expected insert, got id %s", d.ID)
		}
		return insert(ctx, d)
	}
	uc := NewDoctorUsecase(quietLogger(), repo, audit)

	if _, err := uc.UpdateDoctor(context.Background(), admin(), doctorRequest()); err != nil {
		t.Fatalf("UpdateDoctor() error = %v", err)
	}
	if got := audit.Actions(); len(got) != 1 || got[0] != entity.AuditActionDoctorCreate {
		t.Fatalf("audit actions = %v", got)
	}
}

func TestUpdateDoctor_WithID(t *testing.T) {
	id := uuid.New()
	created := testNow.Add(-30 * 24 * time.Hour)
	audit := &recordingAudit{}
	repo := doctorTable(entity.Doctor{ID: id, LastName: "Hopper", Speciality: "Cardiology", CreatedAt: created})
	update := repo.save
	repo.save = func(ctx context.Context, d *entity.Doctor) error {
		if d.ID != id {
			t.Fatalf("saved id = %s, want %s", d.ID, id)
		}
		if !d.CreatedAt.IsZero() {
			t.Fatalf("request carried CreatedAt %v", d.CreatedAt)
		}
		return update(ctx, d)
	}
	uc := NewDoctorUsecase(quietLogger(), repo, audit)

	req := doctorRequest()
	req.ID = &id
	req.Speciality = "Neurology"
	res, err := uc.UpdateDoctor(context.Background(), admin(), req)
	if err != nil {
		t.Fatalf("UpdateDoctor() error = %v", err)
	}
	if res.Speciality != "Neurology" {
		t.Fatalf("Speciality = %q, want Neurology", res.Speciality)
	}
	if !res.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt = %v, want stored %v", res.CreatedAt, created)
	}
	if got := audit.Actions(); len(got) != 1 || got[0] != entity.AuditActionDoctorUpdate {
		t.Fatalf("audit actions = %v", got)
	}
}

func TestGetDoctor(t *testing.T) {
	known := entity.Doctor{ID: uuid.New(), LastName: "Snow", Gender: entity.GenderMale}
	repo := &fakeDoctorRepo{
		findByID: func(_ context.Context, id uuid.UUID) (*entity.Doctor, error) {
			if id == known.ID {
				return &known, nil
			}
			return nil, nil
		},
		findAll: func(context.Context) ([]entity.Doctor, error) {
			return []entity.Doctor{known}, nil
		},
	}
	uc := NewDoctorUsecase(quietLogger(), repo, &recordingAudit{})

	res, err := uc.GetDoctor(context.Background(), known.ID)
	if err != nil || res.LastName != "Snow" {
		t.Fatalf("GetDoctor() = %+v, %v", res, err)
	}
	if _, err := uc.GetDoctor(context.Background(), uuid.New()); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("GetDoctor() error = %v, want %v", err, ErrDoctorNotFound)
	}

	list, err := uc.GetAllDoctors(context.Background())
	if err != nil || list.Total != 1 {
		t.Fatalf("GetAllDoctors() = %+v, %v", list, err)
	}
}

func TestDeleteDoctor(t *testing.T) {
	referenced := uuid.New()
	repo := &fakeDoctorRepo{
		deleteByID: func(_ context.Context, id uuid.UUID) error {
			if id == referenced {
				return fkError("fk_appointments_doctor")
			}
			return nil
		},
	}
	audit := &recordingAudit{}
	uc := NewDoctorUsecase(quietLogger(), repo, audit)

	if err := uc.DeleteDoctor(context.Background(), user(), uuid.New()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin DeleteDoctor() error = %v, want %v", err, ErrForbidden)
	}
	if err := uc.DeleteDoctor(context.Background(), admin(), referenced); !errors.Is(err, ErrDoctorHasAppointments) {
		t.Fatalf("DeleteDoctor() error = %v, want %v", err, ErrDoctorHasAppointments)
	}
	if err := uc.DeleteDoctor(context.Background(), admin(), uuid.New()); err != nil {
		t.Fatalf("DeleteDoctor() error = %v", err)
	}
	if got := audit.Actions(); len(got) != 1 || got[0] != entity.AuditActionDoctorDelete {
		t.Fatalf("audit actions = %v", got)
	}
}
