package entity

import (
	"time"

	"github.com/google/uuid"
)

// Patient holds the subset of the patient record that consultations reference.
type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FirstName string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string     `gorm:"type:varchar(100);not null" json:"last_name"`
	Gender    string     `gorm:"type:varchar(10);not null" json:"gender"`
	BirthDate string     `gorm:"type:varchar(10)" json:"birth_date,omitempty"`
	DoctorID  *uuid.UUID `gorm:"type:uuid;index" json:"doctor_id,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
)
