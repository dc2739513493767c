package domain

import "time"

// AppointmentStatus enumerates lifecycle states for appointments.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// Appointment is the aggregate for a scheduled visit slot.
type Appointment struct {
	ID          string
	ExternalKey string
	PatientID   string
	DoctorID    string
	ScheduledAt time.Time
	DurationMin int
	Status      AppointmentStatus
	Reason      string
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt *time.Time
}

// CanTransition reports whether moving to the target status is legal.
func (a *Appointment) CanTransition(to AppointmentStatus) bool {
	switch a.Status {
	case AppointmentStatusScheduled:
		return to == AppointmentStatusConfirmed || to == AppointmentStatusCancelled ||
			to == AppointmentStatusCompleted || to == AppointmentStatusNoShow
	case AppointmentStatusConfirmed:
		return to == AppointmentStatusCompleted || to == AppointmentStatusCancelled ||
			to == AppointmentStatusNoShow
	default:
		return false
	}
}
