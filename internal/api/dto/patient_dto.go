package dto

import "time"

// CreatePatientRequest payload for admin-side profile creation.
type CreatePatientRequest struct {
	UserID      string   `json:"user_id" validate:"required,uuid4"`
	Name        string   `json:"name" validate:"required,min=2,max=120"`
	DateOfBirth string   `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Sex         string   `json:"sex" validate:"omitempty,oneof=FEMALE MALE UNSPECIFIED"`
	BloodType   *string  `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies   []string `json:"allergies" validate:"omitempty,dive,min=1,max=120"`
	Phone       *string  `json:"phone" validate:"omitempty,max=32"`
	Address     *string  `json:"address" validate:"omitempty,max=255"`
}

// UpdatePatientRequest payload for partial profile updates.
type UpdatePatientRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=120"`
	DateOfBirth *string  `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Sex         *string  `json:"sex" validate:"omitempty,oneof=FEMALE MALE UNSPECIFIED"`
	BloodType   *string  `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies   []string `json:"allergies" validate:"omitempty,dive,min=1,max=120"`
	Phone       *string  `json:"phone" validate:"omitempty,max=32"`
	Address     *string  `json:"address" validate:"omitempty,max=255"`
}

// PatientResponse describes a patient profile.
type PatientResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	DateOfBirth string    `json:"date_of_birth"`
	Sex         string    `json:"sex"`
	BloodType   *string   `json:"blood_type,omitempty"`
	Allergies   []string  `json:"allergies,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
