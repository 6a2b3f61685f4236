package repository

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"clinic-booking-api/internal/domain/entity"
	domainRepo "clinic-booking-api/internal/domain/repository"
	"clinic-booking-api/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to TEST_DATABASE_URL and applies the migrations.
// The database should be disposable: the test truncates every table.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	if err := database.Migrate(db, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := db.Exec("TRUNCATE audit_logs, appointments, doctors, users RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return db
}

func seedUser(t *testing.T, repo domainRepo.UserRepository, email string) *entity.User {
	t.Helper()
	user := &entity.User{Email: email, Password: "x", FullName: "Pat Doe", RoleID: entity.RoleIDUser, IsActive: true}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedDoctor(t *testing.T, repo domainRepo.DoctorRepository) *entity.Doctor {
	t.Helper()
	doctor := &entity.Doctor{FirstName: "Grace", LastName: "Hopper", Speciality: "Cardiology", Gender: entity.GenderFemale}
	if err := repo.Save(context.Background(), doctor); err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return doctor
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func TestPostgres_AppointmentLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	doctors := NewDoctorRepository(db)
	appointments := NewAppointmentRepository(db)

	user := seedUser(t, users, "pat@clinic.local")
	doctor := seedDoctor(t, doctors)

	start := time.Date(2031, time.March, 4, 11, 0, 0, 0, time.UTC)
	appt := entity.NewAppointment(uuid.Nil, doctor.ID, start, start.Add(30*time.Minute)).WithAssignedUser(user.ID)
	if err := appointments.Save(ctx, &appt); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !appt.HasID() {
		t.Fatalf("Save() did not assign an id")
	}

	got, err := appointments.FindByID(ctx, appt.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID() = %v, %v", got, err)
	}
	if got.Doctor.ID != doctor.ID || got.User.Email != user.Email {
		t.Fatalf("FindByID() relations = %+v / %+v", got.Doctor, got.User)
	}
	if !got.AppointmentStart.Equal(start) {
		t.Fatalf("AppointmentStart = %v, want %v", got.AppointmentStart, start)
	}

	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not stamped on insert")
	}

	// an update built from a request carries no created_at
	moved := entity.NewAppointment(appt.ID, doctor.ID, start.Add(15*time.Minute), start.Add(45*time.Minute)).WithAssignedUser(user.ID)
	if err := appointments.Save(ctx, &moved); err != nil {
		t.Fatalf("Save(update) error = %v", err)
	}
	updated, err := appointments.FindByID(ctx, appt.ID)
	if err != nil || updated == nil {
		t.Fatalf("FindByID(updated) = %v, %v", updated, err)
	}
	if !updated.CreatedAt.Equal(got.CreatedAt) {
		t.Fatalf("CreatedAt after update = %v, want %v", updated.CreatedAt, got.CreatedAt)
	}
	if !updated.AppointmentStart.Equal(start.Add(15 * time.Minute)) {
		t.Fatalf("AppointmentStart after update = %v", updated.AppointmentStart)
	}

	storedDoctor, err := doctors.FindByID(ctx, doctor.ID)
	if err != nil || storedDoctor == nil {
		t.Fatalf("doctors.FindByID() = %v, %v", storedDoctor, err)
	}
	renamed := entity.Doctor{ID: doctor.ID, FirstName: doctor.FirstName, LastName: "Murray Hopper", Gender: doctor.Gender}
	if err := doctors.Save(ctx, &renamed); err != nil {
		t.Fatalf("doctors.Save(update) error = %v", err)
	}
	reloaded, err := doctors.FindByID(ctx, doctor.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("doctors.FindByID(updated) = %v, %v", reloaded, err)
	}
	if reloaded.LastName != "Murray Hopper" || !reloaded.CreatedAt.Equal(storedDoctor.CreatedAt) {
		t.Fatalf("doctor after update = %q created %v, want created %v", reloaded.LastName, reloaded.CreatedAt, storedDoctor.CreatedAt)
	}

	byDoctor, err := appointments.FindByDoctorID(ctx, doctor.ID)
	if err != nil || len(byDoctor) != 1 {
		t.Fatalf("FindByDoctorID() = %d rows, %v", len(byDoctor), err)
	}
	byUser, err := appointments.FindByUserID(ctx, uuid.New())
	if err != nil || len(byUser) != 0 {
		t.Fatalf("FindByUserID(other) = %d rows, %v", len(byUser), err)
	}

	// upsert with a fresh id inserts
	upserted := entity.NewAppointment(uuid.New(), doctor.ID, start.Add(time.Hour), start.Add(90*time.Minute)).WithAssignedUser(user.ID)
	if err := appointments.Save(ctx, &upserted); err != nil {
		t.Fatalf("Save(new id) error = %v", err)
	}
	all, err := appointments.FindAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("FindAll() = %d rows, %v", len(all), err)
	}
	if !all[0].AppointmentStart.Before(all[1].AppointmentStart) {
		t.Fatalf("FindAll() not ordered by start")
	}

	err = doctors.DeleteByID(ctx, doctor.ID)
	if name := constraintName(err); name != "fk_appointments_doctor" {
		t.Fatalf("DeleteByID(doctor with appointments) error = %v", err)
	}

	if err := appointments.DeleteByID(ctx, appt.ID); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}
	if got, err := appointments.FindByID(ctx, appt.ID); err != nil || got != nil {
		t.Fatalf("FindByID(deleted) = %v, %v", got, err)
	}
}

func TestPostgres_ConstraintNames(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	appointments := NewAppointmentRepository(db)

	user := seedUser(t, users, "dup@clinic.local")
	err := users.Create(ctx, &entity.User{Email: "dup@clinic.local", Password: "x", FullName: "Dup", RoleID: entity.RoleIDUser})
	if name := constraintName(err); name != "uni_users_email" {
		t.Fatalf("duplicate email error = %v", err)
	}

	start := time.Now().Add(24 * time.Hour)
	orphan := entity.NewAppointment(uuid.Nil, uuid.New(), start, start.Add(time.Hour)).WithAssignedUser(user.ID)
	err = appointments.Save(ctx, &orphan)
	if name := constraintName(err); name != "fk_appointments_doctor" {
		t.Fatalf("unknown doctor error = %v", err)
	}
}

func TestPostgres_RolesAndAuditLogs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	role, err := NewRoleRepository(db).FindByName(ctx, entity.RoleUser)
	if err != nil || role == nil || role.ID != entity.RoleIDUser {
		t.Fatalf("FindByName(user) = %+v, %v", role, err)
	}
	if missing, err := NewRoleRepository(db).FindByName(ctx, "doctor"); err != nil || missing != nil {
		t.Fatalf("FindByName(doctor) = %+v, %v", missing, err)
	}

	user := seedUser(t, NewUserRepository(db), "audit@clinic.local")
	logs := NewAuditLogRepository(db)
	for _, action := range []string{entity.AuditActionUserLogin, entity.AuditActionUserLogin, entity.AuditActionUserLogout} {
		entry := &entity.AuditLog{UserID: &user.ID, Action: action, Metadata: entity.Metadata{"ip": "127.0.0.1"}}
		if err := logs.Create(ctx, entry); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	page, total, err := logs.FindAll(ctx, domainRepo.AuditLogFilter{Action: entity.AuditActionUserLogin, Limit: 1})
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if total != 2 || len(page) != 1 {
		t.Fatalf("FindAll() = %d rows of %d, want 1 of 2", len(page), total)
	}
	if page[0].User == nil || page[0].User.Role.RoleName != entity.RoleUser {
		t.Fatalf("FindAll() user = %+v", page[0].User)
	}
	if page[0].Metadata["ip"] != "127.0.0.1" {
		t.Fatalf("Metadata = %v", page[0].Metadata)
	}

	got, err := logs.FindByID(ctx, page[0].ID)
	if err != nil || got == nil || got.Action != entity.AuditActionUserLogin {
		t.Fatalf("FindByID() = %+v, %v", got, err)
	}
	if missing, err := logs.FindByID(ctx, 9999); err != nil || missing != nil {
		t.Fatalf("FindByID(missing) = %+v, %v", missing, err)
	}
}
