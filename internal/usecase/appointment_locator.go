package usecase

import (
	"time"

	"go-clinic-workflow/internal/domain/entity"
	"go-clinic-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentLocator finds the appointment a new consultation attaches to.
type AppointmentLocator struct {
	appointmentRepo repository.AppointmentRepository
	now             func() time.Time
	location        *time.Location
}

func NewAppointmentLocator(appointmentRepo repository.AppointmentRepository, now func() time.Time, location *time.Location) *AppointmentLocator {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &AppointmentLocator{
		appointmentRepo: appointmentRepo,
		now:             now,
		location:        location,
	}
}

// Locate looks the explicit appointment up when given, otherwise picks the
// latest confirmed slot of the patient's current local day.
func (l *AppointmentLocator) Locate(db *gorm.DB, patientID uuid.UUID, appointmentID *uuid.UUID) (*entity.Appointment, error) {
	if appointmentID != nil {
		appointment, err := l.appointmentRepo.FindByID(db, *appointmentID)
		if err != nil {
			return nil, err
		}
		if appointment == nil {
			return nil, ErrAppointmentNotFound
		}
		if appointment.PatientID != patientID {
			return nil, ErrAppointmentPatientMismatch
		}
		return appointment, nil
	}

	from, to := l.Today()
	appointment, err := l.appointmentRepo.FindLatestForPatient(db, patientID, from, to, entity.AppointmentStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrNoAppointmentToday
	}
	return appointment, nil
}

// Today returns [start of local day, start of next local day).
func (l *AppointmentLocator) Today() (time.Time, time.Time) {
	return dayBounds(l.now(), l.location)
}

func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
