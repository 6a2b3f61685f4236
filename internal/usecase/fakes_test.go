package usecase

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fkError(constraint string) error {
	return &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: constraint}
}

func uniqueError(constraint string) error {
	return &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraint}
}

// memAppointmentRepo is an in-memory store. Hooks, when set, replace the
// default behaviour of a single method.
type memAppointmentRepo struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]entity.Appointment
	saves int

	doctors map[uuid.UUID]bool // known doctors; nil means every doctor exists

	saveErr     error
	findByIDErr error
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{rows: map[uuid.UUID]entity.Appointment{}}
}

func (r *memAppointmentRepo) Save(_ context.Context, a *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	if r.doctors != nil && !r.doctors[a.DoctorID] {
		return fkError("fk_appointments_doctor")
	}
	if !a.HasID() {
		a.ID = uuid.New()
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = time.Now()
	r.rows[a.ID] = *a
	r.saves++
	return nil
}

func (r *memAppointmentRepo) FindAll(context.Context) ([]entity.Appointment, error) {
	return r.filter(func(entity.Appointment) bool { return true }), nil
}

func (r *memAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByIDErr != nil {
		return nil, r.findByIDErr
	}
	a, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memAppointmentRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]entity.Appointment, error) {
	return r.filter(func(a entity.Appointment) bool { return a.UserID == userID }), nil
}

func (r *memAppointmentRepo) FindByDoctorID(_ context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	return r.filter(func(a entity.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *memAppointmentRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memAppointmentRepo) filter(keep func(entity.Appointment) bool) []entity.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Appointment
	for _, a := range r.rows {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentStart.Before(out[j].AppointmentStart) })
	return out
}

type fakeDoctorRepo struct {
	save       func(ctx context.Context, d *entity.Doctor) error
	findAll    func(ctx context.Context) ([]entity.Doctor, error)
	findByID   func(ctx context.Context, id uuid.UUID) (*entity.Doctor, error)
	deleteByID func(ctx context.Context, id uuid.UUID) error
}

func (f *fakeDoctorRepo) Save(ctx context.Context, d *entity.Doctor) error {
	if f.save == nil {
		panic("Save not configured")
	}
	return f.save(ctx, d)
}

func (f *fakeDoctorRepo) FindAll(ctx context.Context) ([]entity.Doctor, error) {
	if f.findAll == nil {
		panic("FindAll not configured")
	}
	return f.findAll(ctx)
}

func (f *fakeDoctorRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	if f.findByID == nil {
		panic("FindByID not configured")
	}
	return f.findByID(ctx, id)
}

func (f *fakeDoctorRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if f.deleteByID == nil {
		panic("DeleteByID not configured")
	}
	return f.deleteByID(ctx, id)
}

type memUserRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*entity.User
	createErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[uuid.UUID]*entity.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return uniqueError("idx_users_email")
		}
	}
	user.ID = uuid.New()
	cp := *user
	r.byID[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

type fakeRoleRepo struct {
	roles map[string]*entity.Role
}

func (f *fakeRoleRepo) FindByName(_ context.Context, name string) (*entity.Role, error) {
	return f.roles[name], nil
}

func seededRoles() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[string]*entity.Role{
		entity.RoleAdmin: {ID: entity.RoleIDAdmin, RoleName: entity.RoleAdmin},
		entity.RoleUser:  {ID: entity.RoleIDUser, RoleName: entity.RoleUser},
	}}
}

type memTokenStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{keys: map[string]bool{}}
}

func (s *memTokenStore) set(kind string, userID uuid.UUID, tokenID string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := kind + ":" + userID.String() + ":" + tokenID
	if v {
		s.keys[key] = true
	} else {
		delete(s.keys, key)
	}
}

func (s *memTokenStore) has(kind string, userID uuid.UUID, tokenID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[kind+":"+userID.String()+":"+tokenID]
}

func (s *memTokenStore) StoreAccess(_ context.Context, userID uuid.UUID, tokenID string, _ time.Duration) error {
	s.set("access", userID, tokenID, true)
	return nil
}

func (s *memTokenStore) StoreRefresh(_ context.Context, userID uuid.UUID, tokenID string, _ time.Duration) error {
	s.set("refresh", userID, tokenID, true)
	return nil
}

func (s *memTokenStore) AccessExists(_ context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	return s.has("access", userID, tokenID), nil
}

func (s *memTokenStore) RefreshExists(_ context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	return s.has("refresh", userID, tokenID), nil
}

func (s *memTokenStore) RevokeAccess(_ context.Context, userID uuid.UUID, tokenID string) error {
	s.set("access", userID, tokenID, false)
	return nil
}

func (s *memTokenStore) RevokeRefresh(_ context.Context, userID uuid.UUID, tokenID string) error {
	s.set("refresh", userID, tokenID, false)
	return nil
}

func (s *memTokenStore) RevokeAll(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.keys {
		if strings.Contains(k, userID.String()) {
			delete(s.keys, k)
		}
	}
	return nil
}

// recordingAudit keeps every action written.
type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingAudit) record(action string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	return nil
}

func (a *recordingAudit) LogCreate(_ context.Context, _ *uuid.UUID, action, _, _ string, _ any) error {
	return a.record(action)
}

func (a *recordingAudit) LogUpdate(_ context.Context, _ *uuid.UUID, action, _, _ string, _, _ any) error {
	return a.record(action)
}

func (a *recordingAudit) LogDelete(_ context.Context, _ *uuid.UUID, action, _, _ string, _ any) error {
	return a.record(action)
}

func (a *recordingAudit) LogEvent(_ context.Context, _ *uuid.UUID, action string, _ entity.Metadata) error {
	return a.record(action)
}

func (a *recordingAudit) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.actions...)
}

type fakeAuditLogRepo struct {
	findAll  func(ctx context.Context, filter repository.AuditLogFilter) ([]entity.AuditLog, int64, error)
	findByID func(ctx context.Context, id int64) (*entity.AuditLog, error)
}

func (f *fakeAuditLogRepo) Create(context.Context, *entity.AuditLog) error {
	panic("Create not expected")
}

func (f *fakeAuditLogRepo) FindAll(ctx context.Context, filter repository.AuditLogFilter) ([]entity.AuditLog, int64, error) {
	return f.findAll(ctx, filter)
}

func (f *fakeAuditLogRepo) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	return f.findByID(ctx, id)
}
