package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/events"
	"github.com/spec-kit/clinic-service/internal/repository"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

const defaultAppointmentMinutes = 30

// Actor identifies the verified caller inside service operations.
type Actor struct {
	SubjectID string
	Role      domain.Role
}

// AppointmentService coordinates booking and lifecycle transitions.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	users        repository.UserRepository
	dispatcher   events.Dispatcher
	now          func() time.Time
}

// NewAppointmentService builds the service.
func NewAppointmentService(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	dispatcher events.Dispatcher,
) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		patients:     patients,
		users:        users,
		dispatcher:   dispatcher,
		now:          time.Now,
	}
}

// BookInput carries booking fields. PatientID is honored only for admins;
// patients always book for themselves.
type BookInput struct {
	PatientID   string
	DoctorID    string
	ScheduledAt time.Time
	DurationMin int
	Reason      string
}

// Book creates a SCHEDULED appointment after doctor and slot validation.
func (s *AppointmentService) Book(ctx context.Context, actor Actor, input BookInput) (*domain.Appointment, error) {
	patientID := input.PatientID
	if actor.Role == domain.RolePatient {
		patient, err := s.patients.GetByUserID(ctx, actor.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("patient profile", nil)
			}
			return nil, err
		}
		patientID = patient.ID
	} else if patientID == "" {
		return nil, apperrors.NewValidationError("patient_id required", nil)
	} else if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", nil)
		}
		return nil, err
	}

	doctor, err := s.users.GetByID(ctx, input.DoctorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("doctor", nil)
		}
		return nil, err
	}
	if doctor.Role != domain.RoleDoctor || !doctor.Active {
		return nil, apperrors.NewValidationError("doctor_id does not reference an active doctor", nil)
	}

	if !input.ScheduledAt.After(s.now()) {
		return nil, apperrors.NewValidationError("scheduled_at must be in the future", nil)
	}

	duration := input.DurationMin
	if duration <= 0 {
		duration = defaultAppointmentMinutes
	}

	from := input.ScheduledAt
	to := from.Add(time.Duration(duration) * time.Minute)
	overlapping, err := s.appointments.CountOverlapping(ctx, input.DoctorID, from, to)
	if err != nil {
		return nil, err
	}
	if overlapping > 0 {
		return nil, apperrors.NewConflict("doctor already booked for this slot", nil)
	}

	appt := &domain.Appointment{
		ExternalKey: uuid.NewString(),
		PatientID:   patientID,
		DoctorID:    input.DoctorID,
		ScheduledAt: input.ScheduledAt,
		DurationMin: duration,
		Status:      domain.AppointmentStatusScheduled,
		Reason:      input.Reason,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{
		Type:      events.EventAppointmentBooked,
		PatientID: appt.PatientID,
		Payload: events.AppointmentBookedPayload{
			AppointmentID: appt.ID,
			DoctorID:      appt.DoctorID,
			ScheduledAt:   appt.ScheduledAt,
			Reason:        appt.Reason,
		},
	})
	return appt, nil
}

// ListForActor returns appointments visible to the caller: patients see
// their own, doctors their schedule, admins everything the filter matches.
func (s *AppointmentService) ListForActor(ctx context.Context, actor Actor, filter repository.AppointmentFilter) ([]domain.Appointment, error) {
	switch actor.Role {
	case domain.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, actor.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("patient profile", nil)
			}
			return nil, err
		}
		filter.PatientID = &patient.ID
	case domain.RoleDoctor:
		doctorID := actor.SubjectID
		filter.DoctorID = &doctorID
	}
	return s.appointments.ListWithFilter(ctx, filter)
}

// GetForActor loads one appointment, enforcing visibility.
func (s *AppointmentService) GetForActor(ctx context.Context, actor Actor, id string) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", nil)
		}
		return nil, err
	}
	if err := s.authorize(ctx, actor, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// UpdateStatus moves the appointment to CONFIRMED, COMPLETED or NO_SHOW.
// Cancellation goes through Cancel.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor Actor, id string, to domain.AppointmentStatus) (*domain.Appointment, error) {
	if to != domain.AppointmentStatusConfirmed && to != domain.AppointmentStatusCompleted && to != domain.AppointmentStatusNoShow {
		return nil, apperrors.NewValidationError("unsupported status transition", nil)
	}

	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", nil)
		}
		return nil, err
	}

	if actor.Role == domain.RoleDoctor && appt.DoctorID != actor.SubjectID {
		return nil, apperrors.NewForbidden("appointment belongs to another doctor")
	}
	if actor.Role == domain.RolePatient {
		return nil, apperrors.NewForbidden("patients cannot change appointment status")
	}

	if !appt.CanTransition(to) {
		return nil, apperrors.NewConflict("illegal status transition", map[string]any{
			"from": appt.Status,
			"to":   to,
		})
	}

	old := appt.Status
	appt.Status = to
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{
		Type:      events.EventAppointmentStatusChanged,
		PatientID: appt.PatientID,
		Payload: events.AppointmentStatusChangedPayload{
			AppointmentID: appt.ID,
			OldStatus:     old,
			NewStatus:     to,
		},
	})
	return appt, nil
}

// Cancel marks the appointment CANCELLED. Owning patient or admin only.
func (s *AppointmentService) Cancel(ctx context.Context, actor Actor, id string) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", nil)
		}
		return nil, err
	}

	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, actor.SubjectID)
		if err != nil || patient.ID != appt.PatientID {
			return nil, apperrors.NewForbidden("appointment belongs to another patient")
		}
	default:
		return nil, apperrors.NewForbidden("only the owning patient or an admin can cancel")
	}

	if !appt.CanTransition(domain.AppointmentStatusCancelled) {
		return nil, apperrors.NewConflict("appointment can no longer be cancelled", map[string]any{
			"status": appt.Status,
		})
	}

	now := s.now()
	appt.Status = domain.AppointmentStatusCancelled
	appt.CancelledAt = &now
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.publish(ctx, actor, events.Event{
		Type:      events.EventAppointmentCancelled,
		PatientID: appt.PatientID,
		Payload: events.AppointmentCancelledPayload{
			AppointmentID: appt.ID,
			ScheduledAt:   appt.ScheduledAt,
		},
	})
	return appt, nil
}

func (s *AppointmentService) authorize(ctx context.Context, actor Actor, appt *domain.Appointment) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleDoctor:
		if appt.DoctorID != actor.SubjectID {
			return apperrors.NewForbidden("appointment belongs to another doctor")
		}
		return nil
	case domain.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, actor.SubjectID)
		if err != nil || patient.ID != appt.PatientID {
			return apperrors.NewForbidden("appointment belongs to another patient")
		}
		return nil
	default:
		return apperrors.NewForbidden("unknown role")
	}
}

func (s *AppointmentService) publish(ctx context.Context, actor Actor, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Actor = events.Actor{SubjectID: actor.SubjectID, Role: actor.Role}
	event.Timestamp = s.now()
	_ = s.dispatcher.Publish(ctx, event)
}
