package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// VisitRecordRepository encapsulates clinical note persistence.
type VisitRecordRepository interface {
	Create(ctx context.Context, record *domain.VisitRecord) error
	Update(ctx context.Context, record *domain.VisitRecord) error
	GetByID(ctx context.Context, id string) (*domain.VisitRecord, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]domain.VisitRecord, error)
}

type visitRecordRepository struct {
	pool *pgxpool.Pool
}

// NewVisitRecordRepository instantiates repository.
func NewVisitRecordRepository(pool *pgxpool.Pool) VisitRecordRepository {
	return &visitRecordRepository{pool: pool}
}

func (r *visitRecordRepository) Create(ctx context.Context, record *domain.VisitRecord) error {
	const query = `
        INSERT INTO visit_records (patient_id, doctor_id, appointment_id, diagnosis, prescription, notes, visited_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		record.PatientID,
		record.DoctorID,
		record.AppointmentID,
		record.Diagnosis,
		record.Prescription,
		record.Notes,
		record.VisitedAt,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
}

func (r *visitRecordRepository) Update(ctx context.Context, record *domain.VisitRecord) error {
	const query = `
        UPDATE visit_records SET diagnosis=$1, prescription=$2, notes=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		record.Diagnosis,
		record.Prescription,
		record.Notes,
		record.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *visitRecordRepository) GetByID(ctx context.Context, id string) (*domain.VisitRecord, error) {
	const query = selectVisitRecord + ` WHERE id=$1`
	return scanVisitRecord(r.pool.QueryRow(ctx, query, id))
}

func (r *visitRecordRepository) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]domain.VisitRecord, error) {
	const query = selectVisitRecord + `
        WHERE patient_id=$1
        ORDER BY visited_at DESC
        LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.VisitRecord, 0)
	for rows.Next() {
		record, err := scanVisitRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

const selectVisitRecord = `
        SELECT id, patient_id, doctor_id, appointment_id, diagnosis, prescription, notes, visited_at, created_at, updated_at
        FROM visit_records`

func scanVisitRecord(row pgx.Row) (*domain.VisitRecord, error) {
	var record domain.VisitRecord
	if err := row.Scan(
		&record.ID,
		&record.PatientID,
		&record.DoctorID,
		&record.AppointmentID,
		&record.Diagnosis,
		&record.Prescription,
		&record.Notes,
		&record.VisitedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}
