package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	PatientID uuid.UUID  `json:"patient_id" validate:"required"`
	DoctorID  *uuid.UUID `json:"doctor_id,omitempty"` // ignored when a session is present
	Date      string     `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string     `json:"time" validate:"required,datetime=15:04"`
	Type      string     `json:"type" validate:"omitempty,oneof=consultation vaccination follow-up"`
	Notes     string     `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed in-consultation completed cancelled no-show"`
}

// Response DTOs

type AppointmentResponse struct {
	ID        uuid.UUID       `json:"id"`
	PatientID uuid.UUID       `json:"patient_id"`
	DoctorID  uuid.UUID       `json:"doctor_id"`
	Date      string          `json:"date"`
	Time      string          `json:"time"`
	Type      string          `json:"type"`
	Notes     string          `json:"notes,omitempty"`
	Status    string          `json:"status"`
	Patient   *PatientSummary `json:"patient,omitempty"`
	Doctor    *DoctorSummary  `json:"doctor,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
