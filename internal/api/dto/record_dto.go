package dto

import "time"

// CreateRecordRequest payload for a new visit record.
type CreateRecordRequest struct {
	PatientID     string    `json:"patient_id" validate:"required,uuid4"`
	AppointmentID *string   `json:"appointment_id" validate:"omitempty,uuid4"`
	Diagnosis     string    `json:"diagnosis" validate:"required,min=3,max=1000"`
	Prescription  *string   `json:"prescription" validate:"omitempty,max=2000"`
	Notes         *string   `json:"notes" validate:"omitempty,max=4000"`
	VisitedAt     time.Time `json:"visited_at"`
}

// AmendRecordRequest payload for author amendments.
type AmendRecordRequest struct {
	Diagnosis    *string `json:"diagnosis" validate:"omitempty,min=3,max=1000"`
	Prescription *string `json:"prescription" validate:"omitempty,max=2000"`
	Notes        *string `json:"notes" validate:"omitempty,max=4000"`
}

// RecordResponse describes a visit record.
type RecordResponse struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	DoctorID      string    `json:"doctor_id"`
	AppointmentID *string   `json:"appointment_id,omitempty"`
	Diagnosis     string    `json:"diagnosis"`
	Prescription  *string   `json:"prescription,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	VisitedAt     time.Time `json:"visited_at"`
	CreatedAt     time.Time `json:"created_at"`
}
