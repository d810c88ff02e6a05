package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateConsultationRequest struct {
	PatientID     uuid.UUID        `json:"patient_id" validate:"required"`
	AppointmentID *uuid.UUID       `json:"appointment_id,omitempty"`
	DoctorID      *uuid.UUID       `json:"doctor_id,omitempty"` // ignored when a session is present
	Motif         string           `json:"motif" validate:"required"`
	History       string           `json:"history" validate:"omitempty"`
	Anamnesis     string           `json:"anamnesis" validate:"omitempty"`
	ClinicalExam  string           `json:"clinical_exam" validate:"omitempty"`
	Plan          string           `json:"plan" validate:"omitempty"`
	Treatment     string           `json:"treatment" validate:"omitempty"`
	IsPaid        bool             `json:"is_paid"`
	Fee           *decimal.Decimal `json:"fee,omitempty"`
}

type UpdateConsultationRequest struct {
	Motif        *string          `json:"motif" validate:"omitempty,min=1"`
	History      *string          `json:"history"`
	Anamnesis    *string          `json:"anamnesis"`
	ClinicalExam *string          `json:"clinical_exam"`
	Plan         *string          `json:"plan"`
	Treatment    *string          `json:"treatment"`
	IsPaid       *bool            `json:"is_paid"`
	Fee          *decimal.Decimal `json:"fee"`
}

// ConsultationQuery carries the paginated listing parameters. The json
// names only label validation errors; the values come from the query string.
type ConsultationQuery struct {
	Page      int    `json:"page" validate:"gte=0"`
	Limit     int    `json:"limit" validate:"gte=0"`
	StartDate string `json:"start_date"` // YYYY-MM-DD or RFC3339
	EndDate   string `json:"end_date"`   // YYYY-MM-DD (inclusive day) or RFC3339
	Search    string `json:"search"`
	SortOrder string `json:"sort_order" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// Response DTOs

type PatientSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Gender    string    `json:"gender"`
	BirthDate string    `json:"birth_date,omitempty"`
}

type DoctorSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
}

type AppointmentSummary struct {
	ID     uuid.UUID `json:"id"`
	Date   string    `json:"date"`
	Time   string    `json:"time"`
	Type   string    `json:"type"`
	Status string    `json:"status"`
}

type ConsultationResponse struct {
	ID               uuid.UUID           `json:"id"`
	AppointmentID    *uuid.UUID          `json:"appointment_id,omitempty"`
	PatientID        uuid.UUID           `json:"patient_id"`
	DoctorID         uuid.UUID           `json:"doctor_id"`
	ConsultationDate time.Time           `json:"consultation_date"`
	Motif            string              `json:"motif"`
	History          string              `json:"history,omitempty"`
	Anamnesis        string              `json:"anamnesis,omitempty"`
	ClinicalExam     string              `json:"clinical_exam,omitempty"`
	Plan             string              `json:"plan,omitempty"`
	Treatment        string              `json:"treatment,omitempty"`
	Status           string              `json:"status"`
	IsPaid           bool                `json:"is_paid"`
	Fee              decimal.Decimal     `json:"fee"`
	Patient          *PatientSummary     `json:"patient,omitempty"`
	Doctor           *DoctorSummary      `json:"doctor,omitempty"`
	Appointment      *AppointmentSummary `json:"appointment,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type ConsultationListResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	Total         int                    `json:"total"`
}

type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

type PaginatedConsultationResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	Pagination    PaginationResponse     `json:"pagination"`
}

type MonthlyStatResponse struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Count int64 `json:"count"`
}

type ConsultationStatsResponse struct {
	TotalConsultations int64                 `json:"total_consultations"`
	TodayConsultations int64                 `json:"today_consultations"`
	MonthlyStats       []MonthlyStatResponse `json:"monthly_stats"`
	PaidRevenue        decimal.Decimal       `json:"paid_revenue"`
}
