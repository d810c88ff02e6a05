package repository

import (
	"time"

	"go-clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	// FindLatestForPatient returns the appointment with the greatest time slot
	// whose date falls in [from, to) and whose status matches.
	FindLatestForPatient(db *gorm.DB, patientID uuid.UUID, from, to time.Time, status entity.AppointmentStatus) (*entity.Appointment, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error)
}
