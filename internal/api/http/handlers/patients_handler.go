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

// PatientsHandler manages patient profile endpoints.
type PatientsHandler struct {
	service  *service.PatientService
	validate *validator.Validate
}

// NewPatientsHandler constructs handler.
func NewPatientsHandler(patientService *service.PatientService, validate *validator.Validate) *PatientsHandler {
	return &PatientsHandler{service: patientService, validate: validate}
}

// Create handles POST /patients (admin only).
func (h *PatientsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePatientRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return apperrors.NewValidationError("invalid date_of_birth", nil)
	}

	patient, err := h.service.CreatePatient(c.Context(), service.PatientCreateInput{
		UserID:      req.UserID,
		Name:        req.Name,
		DateOfBirth: dob,
		Sex:         domain.Sex(req.Sex),
		BloodType:   req.BloodType,
		Allergies:   req.Allergies,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": patientResponse(patient)})
}

// Get handles GET /patients/:id (admin, doctor).
func (h *PatientsHandler) Get(c *fiber.Ctx) error {
	patient, err := h.service.GetPatient(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": patientResponse(patient)})
}

// GetMe handles GET /patients/me (patient's own profile).
func (h *PatientsHandler) GetMe(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewAccessDenied("authentication required")
	}
	patient, err := h.service.GetPatientByUser(c.Context(), identity.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": patientResponse(patient)})
}

// List handles GET /patients (admin, doctor).
func (h *PatientsHandler) List(c *fiber.Ctx) error {
	filter := repository.PatientFilter{
		ActiveOnly: c.QueryBool("active_only", false),
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
	}
	if name := c.Query("name"); name != "" {
		filter.NameSearch = &name
	}

	patients, err := h.service.ListPatients(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		items = append(items, patientResponse(&patients[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Update handles PATCH /patients/:id (admin, doctor).
func (h *PatientsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdatePatientRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	input := service.PatientUpdateInput{
		Name:      req.Name,
		BloodType: req.BloodType,
		Allergies: req.Allergies,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			return apperrors.NewValidationError("invalid date_of_birth", nil)
		}
		input.DateOfBirth = &dob
	}
	if req.Sex != nil {
		sex := domain.Sex(*req.Sex)
		input.Sex = &sex
	}

	patient, err := h.service.UpdatePatient(c.Context(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": patientResponse(patient)})
}

// Deactivate handles DELETE /patients/:id (admin only, soft delete).
func (h *PatientsHandler) Deactivate(c *fiber.Ctx) error {
	if err := h.service.DeactivatePatient(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deactivated": true}})
}

func patientResponse(patient *domain.Patient) dto.PatientResponse {
	return dto.PatientResponse{
		ID:          patient.ID,
		UserID:      patient.UserID,
		Name:        patient.Name,
		DateOfBirth: patient.DateOfBirth.Format(dateLayout),
		Sex:         string(patient.Sex),
		BloodType:   patient.BloodType,
		Allergies:   patient.Allergies,
		Phone:       patient.Phone,
		Address:     patient.Address,
		Active:      patient.Active,
		CreatedAt:   patient.CreatedAt,
		UpdatedAt:   patient.UpdatedAt,
	}
}
