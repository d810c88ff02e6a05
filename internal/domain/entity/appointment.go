package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending        AppointmentStatus = "pending"
	AppointmentStatusConfirmed      AppointmentStatus = "confirmed"
	AppointmentStatusInConsultation AppointmentStatus = "in-consultation"
	AppointmentStatusCompleted      AppointmentStatus = "completed"
	AppointmentStatusCancelled      AppointmentStatus = "cancelled"
	AppointmentStatusNoShow         AppointmentStatus = "no-show"
)

// AppointmentStatuses lists every accepted status.
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusInConsultation,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
	AppointmentStatusNoShow,
}

// IsValid checks the status against the accepted set
func (s AppointmentStatus) IsValid() bool {
	for _, status := range AppointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// AppointmentType represents the kind of encounter
type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeVaccination  AppointmentType = "vaccination"
	AppointmentTypeFollowUp     AppointmentType = "follow-up"
)

// IsValid checks the type against the accepted set
func (t AppointmentType) IsValid() bool {
	switch t {
	case AppointmentTypeConsultation, AppointmentTypeVaccination, AppointmentTypeFollowUp:
		return true
	}
	return false
}

// Appointment represents a scheduled patient-doctor encounter.
// Time is an "HH:MM" string, so lexical order is chronological order.
type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_doctor_date" json:"doctor_id"`
	Date      time.Time         `gorm:"not null;index:idx_appointments_doctor_date" json:"date"`
	Time      string            `gorm:"type:varchar(5);not null" json:"time"`
	Type      AppointmentType   `gorm:"type:varchar(20);not null;default:'consultation'" json:"type"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  User    `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsConfirmed checks if appointment is confirmed
func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// IsCompleted checks if appointment is completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}
