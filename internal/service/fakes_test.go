package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/events"
	"github.com/spec-kit/clinic-service/internal/repository"
)

// In-memory repository fakes backing the service tests.

type fakeUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role, _, _ int) ([]domain.User, error) {
	out := make([]domain.User, 0)
	for _, user := range r.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	return out, nil
}

type fakePatientRepo struct {
	patients map[string]*domain.Patient
	seq      int
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: map[string]*domain.Patient{}}
}

func (r *fakePatientRepo) Create(_ context.Context, patient *domain.Patient) error {
	r.seq++
	patient.ID = fmt.Sprintf("patient-%d", r.seq)
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt
	copied := *patient
	r.patients[patient.ID] = &copied
	return nil
}

func (r *fakePatientRepo) Update(_ context.Context, patient *domain.Patient) error {
	if _, ok := r.patients[patient.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *patient
	r.patients[patient.ID] = &copied
	return nil
}

func (r *fakePatientRepo) GetByID(_ context.Context, id string) (*domain.Patient, error) {
	patient, ok := r.patients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *patient
	return &copied, nil
}

func (r *fakePatientRepo) GetByUserID(_ context.Context, userID string) (*domain.Patient, error) {
	for _, patient := range r.patients {
		if patient.UserID == userID {
			copied := *patient
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakePatientRepo) List(_ context.Context, filter repository.PatientFilter) ([]domain.Patient, error) {
	out := make([]domain.Patient, 0)
	for _, patient := range r.patients {
		if filter.ActiveOnly && !patient.Active {
			continue
		}
		out = append(out, *patient)
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	appointments map[string]*domain.Appointment
	seq          int
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: map[string]*domain.Appointment{}}
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *domain.Appointment) error {
	r.seq++
	appt.ID = fmt.Sprintf("appt-%d", r.seq)
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	copied := *appt
	r.appointments[appt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, appt *domain.Appointment) error {
	if _, ok := r.appointments[appt.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *appt
	r.appointments[appt.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	appt, ok := r.appointments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *appt
	return &copied, nil
}

func (r *fakeAppointmentRepo) GetByExternalKey(_ context.Context, key string) (*domain.Appointment, error) {
	for _, appt := range r.appointments {
		if appt.ExternalKey == key {
			copied := *appt
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAppointmentRepo) ListWithFilter(_ context.Context, filter repository.AppointmentFilter) ([]domain.Appointment, error) {
	out := make([]domain.Appointment, 0)
	for _, appt := range r.appointments {
		if filter.PatientID != nil && appt.PatientID != *filter.PatientID {
			continue
		}
		if filter.DoctorID != nil && appt.DoctorID != *filter.DoctorID {
			continue
		}
		out = append(out, *appt)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountOverlapping(_ context.Context, doctorID string, from, to time.Time) (int, error) {
	count := 0
	for _, appt := range r.appointments {
		if appt.DoctorID != doctorID {
			continue
		}
		if appt.Status == domain.AppointmentStatusCancelled || appt.Status == domain.AppointmentStatusNoShow {
			continue
		}
		end := appt.ScheduledAt.Add(time.Duration(appt.DurationMin) * time.Minute)
		if appt.ScheduledAt.Before(to) && end.After(from) {
			count++
		}
	}
	return count, nil
}

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
	seq    int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.seq++
	token.ID = fmt.Sprintf("reset-%d", r.seq)
	token.CreatedAt = time.Now()
	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	for _, token := range r.tokens {
		if token.Token == tokenStr {
			copied := *token
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	token, ok := r.tokens[id]
	if !ok || token.UsedAt != nil {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	return nil
}

type fakeDispatcher struct {
	published []events.Event
}

func (d *fakeDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *fakeDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type fakeProfileCache struct {
	entries     map[string]*domain.Patient
	gets        int
	sets        int
	invalidated []string
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{entries: map[string]*domain.Patient{}}
}

func (c *fakeProfileCache) Get(_ context.Context, id string) (*domain.Patient, error) {
	c.gets++
	patient, ok := c.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *patient
	return &copied, nil
}

func (c *fakeProfileCache) Set(_ context.Context, patient *domain.Patient) error {
	c.sets++
	copied := *patient
	c.entries[patient.ID] = &copied
	return nil
}

func (c *fakeProfileCache) Invalidate(_ context.Context, id string) error {
	c.invalidated = append(c.invalidated, id)
	delete(c.entries, id)
	return nil
}
