package converter

import (
	"go-clinic-workflow/internal/delivery/dto"
	"go-clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
)

// PatientToSummary returns nil when the patient relation was not loaded
func PatientToSummary(patient *entity.Patient) *dto.PatientSummary {
	if patient == nil || patient.ID == uuid.Nil {
		return nil
	}
	return &dto.PatientSummary{
		ID:        patient.ID,
		FirstName: patient.FirstName,
		LastName:  patient.LastName,
		Gender:    patient.Gender,
		BirthDate: patient.BirthDate,
	}
}
