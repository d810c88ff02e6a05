package converter

import (
	"go-clinic-workflow/internal/delivery/dto"
	"go-clinic-workflow/internal/domain/entity"
)

// ConsultationToResponse converts a Consultation entity to ConsultationResponse DTO.
// Patient, doctor and appointment summaries are included only when loaded.
func ConsultationToResponse(consultation *entity.Consultation) *dto.ConsultationResponse {
	if consultation == nil {
		return nil
	}

	return &dto.ConsultationResponse{
		ID:               consultation.ID,
		AppointmentID:    consultation.AppointmentID,
		PatientID:        consultation.PatientID,
		DoctorID:         consultation.DoctorID,
		ConsultationDate: consultation.ConsultationDate,
		Motif:            consultation.Motif,
		History:          consultation.History,
		Anamnesis:        consultation.Anamnesis,
		ClinicalExam:     consultation.ClinicalExam,
		Plan:             consultation.Plan,
		Treatment:        consultation.Treatment,
		Status:           consultation.Status,
		IsPaid:           consultation.IsPaid,
		Fee:              consultation.Fee,
		Patient:          PatientToSummary(&consultation.Patient),
		Doctor:           UserToDoctorSummary(&consultation.Doctor),
		Appointment:      AppointmentToSummary(consultation.Appointment),
		CreatedAt:        consultation.CreatedAt,
		UpdatedAt:        consultation.UpdatedAt,
	}
}

func ConsultationsToResponses(consultations []entity.Consultation) []dto.ConsultationResponse {
	responses := make([]dto.ConsultationResponse, len(consultations))
	for i := range consultations {
		responses[i] = *ConsultationToResponse(&consultations[i])
	}
	return responses
}

func ConsultationStatsToResponse(stats *entity.ConsultationStats) *dto.ConsultationStatsResponse {
	if stats == nil {
		return nil
	}

	monthly := make([]dto.MonthlyStatResponse, len(stats.MonthlyStats))
	for i, bucket := range stats.MonthlyStats {
		monthly[i] = dto.MonthlyStatResponse{
			Year:  bucket.Year,
			Month: bucket.Month,
			Count: bucket.Count,
		}
	}

	return &dto.ConsultationStatsResponse{
		TotalConsultations: stats.TotalConsultations,
		TodayConsultations: stats.TodayConsultations,
		MonthlyStats:       monthly,
		PaidRevenue:        stats.PaidRevenue,
	}
}
