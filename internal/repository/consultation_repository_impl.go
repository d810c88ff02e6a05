package repository

import (
	"errors"
	"strings"
	"time"

	"go-clinic-workflow/internal/domain/entity"
	domainRepo "go-clinic-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type consultationRepository struct{}

func NewConsultationRepository() domainRepo.ConsultationRepository {
	return &consultationRepository{}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so the term matches literally.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (r *consultationRepository) Create(db *gorm.DB, consultation *entity.Consultation) error {
	return db.Omit("Appointment", "Patient", "Doctor").Create(consultation).Error
}

func (r *consultationRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	return r.FindOwned(db, id, nil)
}

func (r *consultationRepository) FindOwned(db *gorm.DB, id uuid.UUID, doctorID *uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	query := withConsultationRelations(db).Where("id = ?", id)
	if doctorID != nil {
		query = query.Where("doctor_id = ?", *doctorID)
	}
	err := query.First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := withConsultationRelations(db).Where("appointment_id = ?", appointmentID).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) FindAll(db *gorm.DB, filter *entity.ConsultationFilter) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	query := applyConsultationFilter(withConsultationRelations(db), filter)

	order := "consultation_date DESC"
	if filter != nil && filter.Ascending {
		order = "consultation_date ASC"
	}
	query = query.Order(order)

	if filter != nil {
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	}

	if err := query.Find(&consultations).Error; err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) Count(db *gorm.DB, filter *entity.ConsultationFilter) (int64, error) {
	var total int64
	err := applyConsultationFilter(db.Model(&entity.Consultation{}), filter).Count(&total).Error
	return total, err
}

func (r *consultationRepository) Update(db *gorm.DB, id uuid.UUID, patch *entity.ConsultationPatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	return db.Model(&entity.Consultation{}).Where("id = ?", id).Updates(cols).Error
}

func (r *consultationRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Consultation{})
	return result.RowsAffected, result.Error
}

// MonthlyHistogram groups consultations since the given instant by year and month, newest first.
func (r *consultationRepository) MonthlyHistogram(db *gorm.DB, doctorID *uuid.UUID, since time.Time) ([]entity.MonthlyCount, error) {
	var buckets []entity.MonthlyCount
	query := db.Model(&entity.Consultation{}).
		Select(`
			CAST(EXTRACT(YEAR FROM consultation_date) AS INTEGER) AS year,
			CAST(EXTRACT(MONTH FROM consultation_date) AS INTEGER) AS month,
			COUNT(*) AS count
		`).
		Where("consultation_date >= ?", since)
	if doctorID != nil {
		query = query.Where("doctor_id = ?", *doctorID)
	}
	err := query.
		Group("year, month").
		Order("year DESC, month DESC").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}
	return buckets, nil
}

func (r *consultationRepository) SumPaidFees(db *gorm.DB, doctorID *uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := db.Model(&entity.Consultation{}).
		Select("COALESCE(SUM(fee), 0)").
		Where("is_paid = ?", true)
	if doctorID != nil {
		query = query.Where("doctor_id = ?", *doctorID)
	}
	if err := query.Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func withConsultationRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Patient").Preload("Doctor").Preload("Appointment")
}

func applyConsultationFilter(query *gorm.DB, filter *entity.ConsultationFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.PatientID != nil {
		query = query.Where("consultations.patient_id = ?", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		query = query.Where("consultations.doctor_id = ?", *filter.DoctorID)
	}
	if filter.From != nil {
		query = query.Where("consultations.consultation_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("consultations.consultation_date < ?", *filter.To)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + EscapeLike(term) + "%"
		clauses := make([]string, 0, len(entity.ConsultationSearchFields))
		args := make([]interface{}, 0, len(entity.ConsultationSearchFields))
		for _, field := range entity.ConsultationSearchFields {
			clauses = append(clauses, "consultations."+field+" ILIKE ?")
			args = append(args, pattern)
		}
		query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	return query
}
