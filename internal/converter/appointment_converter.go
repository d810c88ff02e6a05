package converter

import (
	"go-clinic-workflow/internal/delivery/dto"
	"go-clinic-workflow/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:        appointment.ID,
		PatientID: appointment.PatientID,
		DoctorID:  appointment.DoctorID,
		Date:      appointment.Date.Format(dateLayout),
		Time:      appointment.Time,
		Type:      string(appointment.Type),
		Notes:     appointment.Notes,
		Status:    string(appointment.Status),
		Patient:   PatientToSummary(&appointment.Patient),
		Doctor:    UserToDoctorSummary(&appointment.Doctor),
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// AppointmentToSummary returns nil when the appointment relation was not loaded
func AppointmentToSummary(appointment *entity.Appointment) *dto.AppointmentSummary {
	if appointment == nil {
		return nil
	}
	return &dto.AppointmentSummary{
		ID:     appointment.ID,
		Date:   appointment.Date.Format(dateLayout),
		Time:   appointment.Time,
		Type:   string(appointment.Type),
		Status: string(appointment.Status),
	}
}
