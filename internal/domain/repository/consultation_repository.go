package repository

import (
	"time"

	"go-clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ConsultationRepository interface {
	Create(db *gorm.DB, consultation *entity.Consultation) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error)
	// FindOwned looks the consultation up under an optional doctor scope.
	FindOwned(db *gorm.DB, id uuid.UUID, doctorID *uuid.UUID) (*entity.Consultation, error)
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.Consultation, error)
	FindAll(db *gorm.DB, filter *entity.ConsultationFilter) ([]entity.Consultation, error)
	Count(db *gorm.DB, filter *entity.ConsultationFilter) (int64, error)
	Update(db *gorm.DB, id uuid.UUID, patch *entity.ConsultationPatch) error
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	MonthlyHistogram(db *gorm.DB, doctorID *uuid.UUID, since time.Time) ([]entity.MonthlyCount, error)
	SumPaidFees(db *gorm.DB, doctorID *uuid.UUID) (decimal.Decimal, error)
}
