package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/dto"
	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/service"
	apperrors "github.com/spec-kit/clinic-service/pkg/util"
)

const dateLayout = "2006-01-02"

// AuthHandler exposes account and credential endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	validate *validator.Validate
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{auth: authService, validate: validate}
}

// Register handles POST /auth/register (patient self-registration).
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.PatientRegisterRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return apperrors.NewValidationError("invalid date_of_birth", nil)
	}

	user, patient, token, exp, err := h.auth.RegisterPatient(c.Context(), service.PatientRegistrationInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: dob,
		Sex:         domain.Sex(req.Sex),
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"account": accountResponse(user),
			"patient": fiber.Map{"id": patient.ID},
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login for any role.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": accountResponse(user),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Me handles GET /auth/me (authenticated-only).
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewAccessDenied("authentication required")
	}
	user, err := h.auth.GetAccount(c.Context(), identity.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": accountResponse(user)})
}

// CreateStaff handles POST /auth/staff (admin only).
func (h *AuthHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	user, err := h.auth.CreateStaff(c.Context(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": accountResponse(user)})
}

// ChangePassword handles POST /auth/password/change (authenticated-only).
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewAccessDenied("authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.Context(), identity.SubjectID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// RequestPasswordReset handles POST /auth/password/reset/request. The
// response never reveals whether the email exists.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	if _, err := h.auth.RequestPasswordReset(c.Context(), req.Email); err != nil {
		// swallow lookup failures so the endpoint cannot be used to probe accounts
		return c.JSON(fiber.Map{"data": fiber.Map{"requested": true}})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"requested": true}})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := parseAndValidate(c, h.validate, &req); err != nil {
		return err
	}

	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

func accountResponse(user *domain.User) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}
