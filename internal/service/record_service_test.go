package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/events"
)

type fakeVisitRecordRepo struct {
	records map[string]*domain.VisitRecord
	seq     int
}

func newFakeVisitRecordRepo() *fakeVisitRecordRepo {
	return &fakeVisitRecordRepo{records: map[string]*domain.VisitRecord{}}
}

func (r *fakeVisitRecordRepo) Create(_ context.Context, record *domain.VisitRecord) error {
	r.seq++
	record.ID = fmt.Sprintf("record-%d", r.seq)
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *fakeVisitRecordRepo) Update(_ context.Context, record *domain.VisitRecord) error {
	if _, ok := r.records[record.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *fakeVisitRecordRepo) GetByID(_ context.Context, id string) (*domain.VisitRecord, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (r *fakeVisitRecordRepo) ListByPatient(_ context.Context, patientID string, _, _ int) ([]domain.VisitRecord, error) {
	out := make([]domain.VisitRecord, 0)
	for _, record := range r.records {
		if record.PatientID == patientID {
			out = append(out, *record)
		}
	}
	return out, nil
}

type recordFixture struct {
	svc        *RecordService
	records    *fakeVisitRecordRepo
	patients   *fakePatientRepo
	dispatcher *fakeDispatcher
	patient    *domain.Patient
}

func newRecordFixture(t *testing.T) *recordFixture {
	t.Helper()

	f := &recordFixture{
		records:    newFakeVisitRecordRepo(),
		patients:   newFakePatientRepo(),
		dispatcher: &fakeDispatcher{},
	}
	f.svc = NewRecordService(f.records, f.patients, f.dispatcher)

	f.patient = &domain.Patient{UserID: "patient-user", Name: "Ada Diaz", Active: true}
	if err := f.patients.Create(context.Background(), f.patient); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return f
}

func TestRecordService_CreateRecord(t *testing.T) {
	f := newRecordFixture(t)
	doctor := Actor{SubjectID: "doctor-1", Role: domain.RoleDoctor}

	record, err := f.svc.CreateRecord(context.Background(), doctor, RecordCreateInput{
		PatientID: f.patient.ID,
		Diagnosis: "seasonal allergy",
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if record.DoctorID != "doctor-1" {
		t.Errorf("DoctorID = %q, want the acting doctor", record.DoctorID)
	}
	if record.VisitedAt.IsZero() {
		t.Error("VisitedAt not defaulted")
	}

	if len(f.dispatcher.published) != 1 || f.dispatcher.published[0].Type != events.EventVisitRecordAdded {
		t.Errorf("published events = %+v, want one visit_record_added", f.dispatcher.published)
	}
}

func TestRecordService_CreateRecord_UnknownPatient(t *testing.T) {
	f := newRecordFixture(t)
	doctor := Actor{SubjectID: "doctor-1", Role: domain.RoleDoctor}

	_, err := f.svc.CreateRecord(context.Background(), doctor, RecordCreateInput{
		PatientID: "missing",
		Diagnosis: "seasonal allergy",
	})
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", code)
	}
}

func TestRecordService_AmendRecord_AuthorOnly(t *testing.T) {
	f := newRecordFixture(t)
	author := Actor{SubjectID: "doctor-1", Role: domain.RoleDoctor}

	record, err := f.svc.CreateRecord(context.Background(), author, RecordCreateInput{
		PatientID: f.patient.ID,
		Diagnosis: "seasonal allergy",
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	diagnosis := "perennial allergy"
	amended, err := f.svc.AmendRecord(context.Background(), author, record.ID, RecordAmendInput{Diagnosis: &diagnosis})
	if err != nil {
		t.Fatalf("AmendRecord: %v", err)
	}
	if amended.Diagnosis != diagnosis {
		t.Errorf("Diagnosis = %q", amended.Diagnosis)
	}

	other := Actor{SubjectID: "doctor-2", Role: domain.RoleDoctor}
	_, err = f.svc.AmendRecord(context.Background(), other, record.ID, RecordAmendInput{Diagnosis: &diagnosis})
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Errorf("code = %q, want FORBIDDEN", code)
	}
}

func TestRecordService_ListByPatient_SelfOnly(t *testing.T) {
	f := newRecordFixture(t)
	author := Actor{SubjectID: "doctor-1", Role: domain.RoleDoctor}
	if _, err := f.svc.CreateRecord(context.Background(), author, RecordCreateInput{
		PatientID: f.patient.ID,
		Diagnosis: "seasonal allergy",
	}); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	owner := Actor{SubjectID: f.patient.UserID, Role: domain.RolePatient}
	records, err := f.svc.ListByPatient(context.Background(), owner, f.patient.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}

	stranger := &domain.Patient{UserID: "other-user", Name: "Bob", Active: true}
	if err := f.patients.Create(context.Background(), stranger); err != nil {
		t.Fatalf("create stranger: %v", err)
	}
	_, err = f.svc.ListByPatient(context.Background(), Actor{SubjectID: "other-user", Role: domain.RolePatient}, f.patient.ID, 0, 0)
	if code := domainCode(t, err); code != "FORBIDDEN" {
		t.Errorf("code = %q, want FORBIDDEN", code)
	}
}

func TestRecordService_ListOwn(t *testing.T) {
	f := newRecordFixture(t)
	author := Actor{SubjectID: "doctor-1", Role: domain.RoleDoctor}
	if _, err := f.svc.CreateRecord(context.Background(), author, RecordCreateInput{
		PatientID: f.patient.ID,
		Diagnosis: "seasonal allergy",
	}); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	owner := Actor{SubjectID: f.patient.UserID, Role: domain.RolePatient}
	records, err := f.svc.ListOwn(context.Background(), owner, 0, 0)
	if err != nil {
		t.Fatalf("ListOwn: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}

	_, err = f.svc.ListOwn(context.Background(), Actor{SubjectID: "no-profile", Role: domain.RolePatient}, 0, 0)
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", code)
	}
}
