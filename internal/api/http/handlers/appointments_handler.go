package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/dto"
	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/repository"
	"github.com/spec-kit/clinic-service/internal/service"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

// AppointmentsHandler manages appointment endpoints.
type AppointmentsHandler struct {
	service  *service.AppointmentService
	validate *validator.Validate
}

// NewAppointmentsHandler constructs handler.
func NewAppointmentsHandler(appointmentService *service.AppointmentService, validate *validator.Validate) *AppointmentsHandler {
	return &AppointmentsHandler{service: appointmentService, validate: validate}
}

// Book handles POST /appointments (patient, admin).
func (h *AppointmentsHandler) Book(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req dto.BookAppointmentRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	appt, err := h.service.Book(c.Context(), actor, service.BookInput{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		ScheduledAt: req.ScheduledAt,
		DurationMin: req.DurationMin,
		Reason:      req.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// List handles GET /appointments (role-scoped visibility).
func (h *AppointmentsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	filter := repository.AppointmentFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []domain.AppointmentStatus{domain.AppointmentStatus(status)}
	}
	if doctorID := c.Query("doctor_id"); doctorID != "" && actor.Role == domain.RoleAdmin {
		filter.DoctorID = &doctorID
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return apperrors.NewValidationError("invalid from timestamp", nil)
		}
		filter.ScheduledFrom = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return apperrors.NewValidationError("invalid to timestamp", nil)
		}
		filter.ScheduledTo = &t
	}

	appts, err := h.service.ListForActor(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		items = append(items, appointmentResponse(&appts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /appointments/:id.
func (h *AppointmentsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	appt, err := h.service.GetForActor(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// UpdateStatus handles POST /appointments/:id/status (doctor, admin).
func (h *AppointmentsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req dto.UpdateAppointmentStatusRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	appt, err := h.service.UpdateStatus(c.Context(), actor, c.Params("id"), domain.AppointmentStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt)})
}

// Cancel handles POST /appointments/:id/cancel (owning patient, admin).
func (h *AppointmentsHandler) Cancel(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	appt, err := h.service.Cancel(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": appointmentResponse(appt)})
}

func actorFromContext(c *fiber.Ctx) (service.Actor, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewAccessDenied("authentication required")
	}
	return service.Actor{SubjectID: identity.SubjectID, Role: identity.Role}, nil
}

func appointmentResponse(appt *domain.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:          appt.ID,
		ExternalKey: appt.ExternalKey,
		PatientID:   appt.PatientID,
		DoctorID:    appt.DoctorID,
		ScheduledAt: appt.ScheduledAt,
		DurationMin: appt.DurationMin,
		Status:      string(appt.Status),
		Reason:      appt.Reason,
		Notes:       appt.Notes,
		CreatedAt:   appt.CreatedAt,
		CancelledAt: appt.CancelledAt,
	}
}
