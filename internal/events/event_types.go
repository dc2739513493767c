package events

import (
	"time"

	"github.com/spec-kit/clinic-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAppointmentBooked        EventType = "appointment_booked"
	EventAppointmentStatusChanged EventType = "appointment_status_changed"
	EventAppointmentCancelled     EventType = "appointment_cancelled"
	EventVisitRecordAdded         EventType = "visit_record_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	SubjectID string      `json:"subject_id"`
	Role      domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	PatientID string      `json:"patient_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AppointmentBookedPayload payload.
type AppointmentBookedPayload struct {
	AppointmentID string    `json:"appointment_id"`
	DoctorID      string    `json:"doctor_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Reason        string    `json:"reason"`
}

// AppointmentStatusChangedPayload payload.
type AppointmentStatusChangedPayload struct {
	AppointmentID string                   `json:"appointment_id"`
	OldStatus     domain.AppointmentStatus `json:"old_status"`
	NewStatus     domain.AppointmentStatus `json:"new_status"`
}

// AppointmentCancelledPayload payload.
type AppointmentCancelledPayload struct {
	AppointmentID string    `json:"appointment_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// VisitRecordAddedPayload payload.
type VisitRecordAddedPayload struct {
	RecordID  string `json:"record_id"`
	DoctorID  string `json:"doctor_id"`
	Diagnosis string `json:"diagnosis"`
}
