package domain

import "time"

// Sex enumerates recorded patient sex values.
type Sex string

const (
	SexFemale      Sex = "FEMALE"
	SexMale        Sex = "MALE"
	SexUnspecified Sex = "UNSPECIFIED"
)

// Patient is the demographic and clinical profile for a patient account.
type Patient struct {
	ID          string
	UserID      string
	Name        string
	DateOfBirth time.Time
	Sex         Sex
	BloodType   *string
	Allergies   []string
	Phone       *string
	Address     *string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
