package domain

import "time"

// VisitRecord is a clinical note written by a doctor after a visit.
type VisitRecord struct {
	ID            string
	PatientID     string
	DoctorID      string
	AppointmentID *string
	Diagnosis     string
	Prescription  *string
	Notes         *string
	VisitedAt     time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
