package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsultationStatusCompleted is the only status a consultation can hold.
const ConsultationStatusCompleted = "completed"

// Consultation is the clinical record produced once an appointment is carried out.
type Consultation struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID    *uuid.UUID      `gorm:"type:uuid" json:"appointment_id,omitempty"`
	PatientID        uuid.UUID       `gorm:"type:uuid;not null" json:"patient_id"`
	DoctorID         uuid.UUID       `gorm:"type:uuid;not null" json:"doctor_id"`
	ConsultationDate time.Time       `gorm:"not null" json:"consultation_date"`
	Motif            string          `gorm:"type:text;not null" json:"motif"`
	History          string          `gorm:"type:text" json:"history,omitempty"`
	Anamnesis        string          `gorm:"type:text" json:"anamnesis,omitempty"`
	ClinicalExam     string          `gorm:"type:text" json:"clinical_exam,omitempty"`
	Plan             string          `gorm:"type:text" json:"plan,omitempty"`
	Treatment        string          `gorm:"type:text" json:"treatment,omitempty"`
	Status           string          `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	IsPaid           bool            `gorm:"not null;default:false" json:"is_paid"`
	Fee              decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"fee"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Patient     Patient      `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor      User         `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Consultation) TableName() string {
	return "consultations"
}

// ConsultationPatch carries the fields an update may change; nil means untouched.
type ConsultationPatch struct {
	Motif        *string
	History      *string
	Anamnesis    *string
	ClinicalExam *string
	Plan         *string
	Treatment    *string
	IsPaid       *bool
	Fee          *decimal.Decimal
}

// Apply copies the non-nil patch fields onto c
func (p *ConsultationPatch) Apply(c *Consultation) {
	if p.Motif != nil {
		c.Motif = *p.Motif
	}
	if p.History != nil {
		c.History = *p.History
	}
	if p.Anamnesis != nil {
		c.Anamnesis = *p.Anamnesis
	}
	if p.ClinicalExam != nil {
		c.ClinicalExam = *p.ClinicalExam
	}
	if p.Plan != nil {
		c.Plan = *p.Plan
	}
	if p.Treatment != nil {
		c.Treatment = *p.Treatment
	}
	if p.IsPaid != nil {
		c.IsPaid = *p.IsPaid
	}
	if p.Fee != nil {
		c.Fee = *p.Fee
	}
}

// Columns returns the column/value map used for a partial UPDATE.
func (p *ConsultationPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Motif != nil {
		cols["motif"] = *p.Motif
	}
	if p.History != nil {
		cols["history"] = *p.History
	}
	if p.Anamnesis != nil {
		cols["anamnesis"] = *p.Anamnesis
	}
	if p.ClinicalExam != nil {
		cols["clinical_exam"] = *p.ClinicalExam
	}
	if p.Plan != nil {
		cols["plan"] = *p.Plan
	}
	if p.Treatment != nil {
		cols["treatment"] = *p.Treatment
	}
	if p.IsPaid != nil {
		cols["is_paid"] = *p.IsPaid
	}
	if p.Fee != nil {
		cols["fee"] = *p.Fee
	}
	return cols
}
