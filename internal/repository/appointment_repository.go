package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// AppointmentFilter captures search parameters for appointment listings.
type AppointmentFilter struct {
	PatientID     *string
	DoctorID      *string
	Statuses      []domain.AppointmentStatus
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	Limit         int
	Offset        int
}

// AppointmentRepository encapsulates appointment persistence.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	Update(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.Appointment, error)
	ListWithFilter(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, error)
	CountOverlapping(ctx context.Context, doctorID string, from, to time.Time) (int, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (external_key, patient_id, doctor_id, scheduled_at, duration_min, status, reason, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		appt.ExternalKey,
		appt.PatientID,
		appt.DoctorID,
		appt.ScheduledAt,
		appt.DurationMin,
		appt.Status,
		appt.Reason,
		appt.Notes,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
}

func (r *appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET scheduled_at=$1, duration_min=$2, status=$3, reason=$4, notes=$5,
            cancelled_at=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		appt.ScheduledAt,
		appt.DurationMin,
		appt.Status,
		appt.Reason,
		appt.Notes,
		appt.CancelledAt,
		appt.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	const query = selectAppointment + ` WHERE id=$1`
	return scanAppointment(r.pool.QueryRow(ctx, query, id))
}

func (r *appointmentRepository) GetByExternalKey(ctx context.Context, key string) (*domain.Appointment, error) {
	const query = selectAppointment + ` WHERE external_key=$1`
	return scanAppointment(r.pool.QueryRow(ctx, query, key))
}

func (r *appointmentRepository) ListWithFilter(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, error) {
	clauses := make([]string, 0, 5)
	args := make([]any, 0, 7)

	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		clauses = append(clauses, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if filter.DoctorID != nil {
		args = append(args, *filter.DoctorID)
		clauses = append(clauses, fmt.Sprintf("doctor_id = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			args = append(args, status)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ",")+")")
	}
	if filter.ScheduledFrom != nil {
		args = append(args, *filter.ScheduledFrom)
		clauses = append(clauses, fmt.Sprintf("scheduled_at >= $%d", len(args)))
	}
	if filter.ScheduledTo != nil {
		args = append(args, *filter.ScheduledTo)
		clauses = append(clauses, fmt.Sprintf("scheduled_at <= $%d", len(args)))
	}

	query := selectAppointment
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY scheduled_at ASC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appts := make([]domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, *appt)
	}
	return appts, rows.Err()
}

// CountOverlapping counts non-cancelled appointments for the doctor whose
// slot intersects [from, to).
func (r *appointmentRepository) CountOverlapping(ctx context.Context, doctorID string, from, to time.Time) (int, error) {
	const query = `
        SELECT COUNT(*) FROM appointments
        WHERE doctor_id=$1
          AND status NOT IN ('CANCELLED','NO_SHOW')
          AND scheduled_at < $3
          AND scheduled_at + (duration_min * INTERVAL '1 minute') > $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, doctorID, from, to).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

const selectAppointment = `
        SELECT id, external_key, patient_id, doctor_id, scheduled_at, duration_min, status, reason, notes,
               created_at, updated_at, cancelled_at
        FROM appointments`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var appt domain.Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.ExternalKey,
		&appt.PatientID,
		&appt.DoctorID,
		&appt.ScheduledAt,
		&appt.DurationMin,
		&appt.Status,
		&appt.Reason,
		&appt.Notes,
		&appt.CreatedAt,
		&appt.UpdatedAt,
		&appt.CancelledAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}
