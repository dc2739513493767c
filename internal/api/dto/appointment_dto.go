package dto

import "time"

// BookAppointmentRequest payload. patient_id is admin-only; patients book
// for themselves.
type BookAppointmentRequest struct {
	PatientID   string    `json:"patient_id" validate:"omitempty,uuid4"`
	DoctorID    string    `json:"doctor_id" validate:"required,uuid4"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	DurationMin int       `json:"duration_min" validate:"omitempty,min=5,max=480"`
	Reason      string    `json:"reason" validate:"required,min=3,max=500"`
}

// UpdateAppointmentStatusRequest payload.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED COMPLETED NO_SHOW"`
}

// AppointmentResponse describes an appointment.
type AppointmentResponse struct {
	ID          string     `json:"id"`
	ExternalKey string     `json:"external_key"`
	PatientID   string     `json:"patient_id"`
	DoctorID    string     `json:"doctor_id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	DurationMin int        `json:"duration_min"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}
