package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// PatientFilter captures listing parameters for patient search.
type PatientFilter struct {
	NameSearch *string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// PatientRepository encapsulates patient profile persistence.
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) error
	Update(ctx context.Context, patient *domain.Patient) error
	GetByID(ctx context.Context, id string) (*domain.Patient, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Patient, error)
	List(ctx context.Context, filter PatientFilter) ([]domain.Patient, error)
}

type patientRepository struct {
	pool *pgxpool.Pool
}

// NewPatientRepository instantiates repository.
func NewPatientRepository(pool *pgxpool.Pool) PatientRepository {
	return &patientRepository{pool: pool}
}

func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	const query = `
        INSERT INTO patients (user_id, name, date_of_birth, sex, blood_type, allergies, phone, address, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		patient.UserID,
		patient.Name,
		patient.DateOfBirth,
		patient.Sex,
		patient.BloodType,
		patient.Allergies,
		patient.Phone,
		patient.Address,
		patient.Active,
	).Scan(&patient.ID, &patient.CreatedAt, &patient.UpdatedAt)
}

func (r *patientRepository) Update(ctx context.Context, patient *domain.Patient) error {
	const query = `
        UPDATE patients SET name=$1, date_of_birth=$2, sex=$3, blood_type=$4, allergies=$5,
            phone=$6, address=$7, active=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		patient.Name,
		patient.DateOfBirth,
		patient.Sex,
		patient.BloodType,
		patient.Allergies,
		patient.Phone,
		patient.Address,
		patient.Active,
		patient.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *patientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	const query = selectPatient + ` WHERE id=$1`
	return scanPatient(r.pool.QueryRow(ctx, query, id))
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID string) (*domain.Patient, error) {
	const query = selectPatient + ` WHERE user_id=$1`
	return scanPatient(r.pool.QueryRow(ctx, query, userID))
}

func (r *patientRepository) List(ctx context.Context, filter PatientFilter) ([]domain.Patient, error) {
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if filter.NameSearch != nil && *filter.NameSearch != "" {
		args = append(args, "%"+strings.ToLower(*filter.NameSearch)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "active = TRUE")
	}

	query := selectPatient
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := make([]domain.Patient, 0)
	for rows.Next() {
		patient, err := scanPatientRow(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *patient)
	}
	return patients, rows.Err()
}

const selectPatient = `
        SELECT id, user_id, name, date_of_birth, sex, blood_type, allergies, phone, address, active, created_at, updated_at
        FROM patients`

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	return scanPatientRow(row)
}

func scanPatientRow(row pgx.Row) (*domain.Patient, error) {
	var patient domain.Patient
	if err := row.Scan(
		&patient.ID,
		&patient.UserID,
		&patient.Name,
		&patient.DateOfBirth,
		&patient.Sex,
		&patient.BloodType,
		&patient.Allergies,
		&patient.Phone,
		&patient.Address,
		&patient.Active,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &patient, nil
}
