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

// RecordService manages clinical visit records.
type RecordService struct {
	records    repository.VisitRecordRepository
	patients   repository.PatientRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewRecordService builds the service.
func NewRecordService(records repository.VisitRecordRepository, patients repository.PatientRepository, dispatcher events.Dispatcher) *RecordService {
	return &RecordService{records: records, patients: patients, dispatcher: dispatcher, now: time.Now}
}

// RecordCreateInput carries note creation fields.
type RecordCreateInput struct {
	PatientID     string
	AppointmentID *string
	Diagnosis     string
	Prescription  *string
	Notes         *string
	VisitedAt     time.Time
}

// RecordAmendInput carries author amendments.
type RecordAmendInput struct {
	Diagnosis    *string
	Prescription *string
	Notes        *string
}

// CreateRecord writes a note authored by the acting doctor.
func (s *RecordService) CreateRecord(ctx context.Context, actor Actor, input RecordCreateInput) (*domain.VisitRecord, error) {
	if _, err := s.patients.GetByID(ctx, input.PatientID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient", nil)
		}
		return nil, err
	}

	visitedAt := input.VisitedAt
	if visitedAt.IsZero() {
		visitedAt = s.now()
	}

	record := &domain.VisitRecord{
		PatientID:     input.PatientID,
		DoctorID:      actor.SubjectID,
		AppointmentID: input.AppointmentID,
		Diagnosis:     input.Diagnosis,
		Prescription:  input.Prescription,
		Notes:         input.Notes,
		VisitedAt:     visitedAt,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventVisitRecordAdded,
			PatientID: record.PatientID,
			Actor:     events.Actor{SubjectID: actor.SubjectID, Role: actor.Role},
			Timestamp: s.now(),
			Payload: events.VisitRecordAddedPayload{
				RecordID:  record.ID,
				DoctorID:  record.DoctorID,
				Diagnosis: record.Diagnosis,
			},
		})
	}
	return record, nil
}

// AmendRecord lets the authoring doctor correct their own note.
func (s *RecordService) AmendRecord(ctx context.Context, actor Actor, id string, input RecordAmendInput) (*domain.VisitRecord, error) {
	record, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("visit record", nil)
		}
		return nil, err
	}
	if record.DoctorID != actor.SubjectID {
		return nil, apperrors.NewForbidden("only the authoring doctor can amend a record")
	}

	if input.Diagnosis != nil {
		record.Diagnosis = *input.Diagnosis
	}
	if input.Prescription != nil {
		record.Prescription = input.Prescription
	}
	if input.Notes != nil {
		record.Notes = input.Notes
	}

	if err := s.records.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListByPatient returns records for a patient chart. Patients may only read
// their own chart; doctors and admins read any.
func (s *RecordService) ListByPatient(ctx context.Context, actor Actor, patientID string, limit, offset int) ([]domain.VisitRecord, error) {
	if actor.Role == domain.RolePatient {
		patient, err := s.patients.GetByUserID(ctx, actor.SubjectID)
		if err != nil || patient.ID != patientID {
			return nil, apperrors.NewForbidden("chart belongs to another patient")
		}
	}
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

// ListOwn returns the acting patient's own chart.
func (s *RecordService) ListOwn(ctx context.Context, actor Actor, limit, offset int) ([]domain.VisitRecord, error) {
	patient, err := s.patients.GetByUserID(ctx, actor.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("patient profile", nil)
		}
		return nil, err
	}
	return s.records.ListByPatient(ctx, patient.ID, limit, offset)
}
