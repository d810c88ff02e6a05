package repository

import (
	"go-clinic-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error)
}
