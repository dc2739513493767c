package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/domain"
	"github.com/spec-kit/clinic-service/internal/repository"
)

// ProfileCache abstracts the patient read cache so the service can run
// without Redis (tests, degraded mode).
type ProfileCache interface {
	Get(ctx context.Context, id string) (*domain.Patient, error)
	Set(ctx context.Context, patient *domain.Patient) error
	Invalidate(ctx context.Context, id string) error
}

// PatientService manages patient profiles.
type PatientService struct {
	patients repository.PatientRepository
	cache    ProfileCache
	logger   *zap.Logger
}

// NewPatientService builds the service. cache may be nil.
func NewPatientService(patients repository.PatientRepository, cache ProfileCache, logger *zap.Logger) *PatientService {
	return &PatientService{patients: patients, cache: cache, logger: logger}
}

// PatientCreateInput carries admin-side profile creation fields.
type PatientCreateInput struct {
	UserID      string
	Name        string
	DateOfBirth time.Time
	Sex         domain.Sex
	BloodType   *string
	Allergies   []string
	Phone       *string
	Address     *string
}

// PatientUpdateInput carries mutable profile fields.
type PatientUpdateInput struct {
	Name        *string
	DateOfBirth *time.Time
	Sex         *domain.Sex
	BloodType   *string
	Allergies   []string
	Phone       *string
	Address     *string
}

// CreatePatient registers a profile for an existing patient account.
func (s *PatientService) CreatePatient(ctx context.Context, input PatientCreateInput) (*domain.Patient, error) {
	sex := input.Sex
	if sex == "" {
		sex = domain.SexUnspecified
	}
	patient := &domain.Patient{
		UserID:      input.UserID,
		Name:        input.Name,
		DateOfBirth: input.DateOfBirth,
		Sex:         sex,
		BloodType:   input.BloodType,
		Allergies:   input.Allergies,
		Phone:       input.Phone,
		Address:     input.Address,
		Active:      true,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// GetPatient reads a profile, consulting the cache first.
func (s *PatientService) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil {
			return cached, nil
		}
	}

	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, patient); err != nil {
			s.logger.Warn("patient cache set failed", zap.Error(err))
		}
	}
	return patient, nil
}

// GetPatientByUser resolves the profile owned by an account.
func (s *PatientService) GetPatientByUser(ctx context.Context, userID string) (*domain.Patient, error) {
	return s.patients.GetByUserID(ctx, userID)
}

// ListPatients lists profiles with filter and paging.
func (s *PatientService) ListPatients(ctx context.Context, filter repository.PatientFilter) ([]domain.Patient, error) {
	return s.patients.List(ctx, filter)
}

// UpdatePatient applies partial updates and invalidates the cache entry.
func (s *PatientService) UpdatePatient(ctx context.Context, id string, input PatientUpdateInput) (*domain.Patient, error) {
	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		patient.Name = *input.Name
	}
	if input.DateOfBirth != nil {
		patient.DateOfBirth = *input.DateOfBirth
	}
	if input.Sex != nil {
		patient.Sex = *input.Sex
	}
	if input.BloodType != nil {
		patient.BloodType = input.BloodType
	}
	if input.Allergies != nil {
		patient.Allergies = input.Allergies
	}
	if input.Phone != nil {
		patient.Phone = input.Phone
	}
	if input.Address != nil {
		patient.Address = input.Address
	}

	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return patient, nil
}

// DeactivatePatient soft-deletes the profile.
func (s *PatientService) DeactivatePatient(ctx context.Context, id string) error {
	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	patient.Active = false
	if err := s.patients.Update(ctx, patient); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *PatientService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("patient cache invalidation failed", zap.String("patient_id", id), zap.Error(err))
	}
}
