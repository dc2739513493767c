package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/dto"
	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/service"
)

// RecordsHandler manages visit record endpoints.
type RecordsHandler struct {
	service  *service.RecordService
	validate *validator.Validate
}

// NewRecordsHandler constructs handler.
func NewRecordsHandler(recordService *service.RecordService, validate *validator.Validate) *RecordsHandler {
	return &RecordsHandler{service: recordService, validate: validate}
}

// Create handles POST /records (doctor only).
func (h *RecordsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req dto.CreateRecordRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	record, err := h.service.CreateRecord(c.Context(), actor, service.RecordCreateInput{
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Prescription:  req.Prescription,
		Notes:         req.Notes,
		VisitedAt:     req.VisitedAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": recordResponse(record)})
}

// Amend handles PATCH /records/:id (authoring doctor only).
func (h *RecordsHandler) Amend(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req dto.AmendRecordRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	record, err := h.service.AmendRecord(c.Context(), actor, c.Params("id"), service.RecordAmendInput{
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recordResponse(record)})
}

// ListByPatient handles GET /patients/:id/records (admin, doctor).
func (h *RecordsHandler) ListByPatient(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	records, err := h.service.ListByPatient(c.Context(), actor, c.Params("id"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recordResponses(records)})
}

// ListMine handles GET /records/me (patient's own chart).
func (h *RecordsHandler) ListMine(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	records, err := h.service.ListOwn(c.Context(), actor, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": recordResponses(records)})
}

func recordResponses(records []domain.VisitRecord) []dto.RecordResponse {
	items := make([]dto.RecordResponse, 0, len(records))
	for i := range records {
		items = append(items, recordResponse(&records[i]))
	}
	return items
}

func recordResponse(record *domain.VisitRecord) dto.RecordResponse {
	return dto.RecordResponse{
		ID:            record.ID,
		PatientID:     record.PatientID,
		DoctorID:      record.DoctorID,
		AppointmentID: record.AppointmentID,
		Diagnosis:     record.Diagnosis,
		Prescription:  record.Prescription,
		Notes:         record.Notes,
		VisitedAt:     record.VisitedAt,
		CreatedAt:     record.CreatedAt,
	}
}
