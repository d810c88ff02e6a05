package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConsultationFilter is a domain-level filter for querying consultations.
// Used by repository layer to avoid coupling with delivery DTOs.
type ConsultationFilter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	From      *time.Time // inclusive
	To        *time.Time // exclusive
	Search    string     // case-insensitive substring over the clinical text fields
	Ascending bool       // sort by consultation_date
	Limit     int        // 0 means no limit
	Offset    int
}

// ConsultationSearchFields lists the text columns free-text search covers.
var ConsultationSearchFields = []string{
	"motif",
	"history",
	"anamnesis",
	"clinical_exam",
	"plan",
	"treatment",
}
