package usecase

import (
	"context"
	"time"

	"go-clinic-workflow/internal/converter"
	"go-clinic-workflow/internal/delivery/dto"
	"go-clinic-workflow/internal/domain/entity"
	"go-clinic-workflow/internal/domain/repository"
	"go-clinic-workflow/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ConsultationUsecase owns every write to consultations and the appointment
// status changes that go with them.
type ConsultationUsecase interface {
	Create(ctx context.Context, req *dto.CreateConsultationRequest, doctorID uuid.UUID) (*dto.ConsultationResponse, error)
	CreateOrUpdate(ctx context.Context, req *dto.CreateConsultationRequest, doctorID uuid.UUID) (*dto.ConsultationResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateConsultationRequest, doctorID *uuid.UUID) (*dto.ConsultationResponse, error)
	Remove(ctx context.Context, id string, doctorID *uuid.UUID) error
	FindOne(ctx context.Context, id string) (*dto.ConsultationResponse, error)
	FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.ConsultationResponse, error)
}

type consultationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	userRepo         repository.UserRepository
	appointmentRepo  repository.AppointmentRepository
	consultationRepo repository.ConsultationRepository
	locator          *AppointmentLocator
	auditService     service.AuditService
	statsCache       service.StatsCache
	now              func() time.Time
}

func NewConsultationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	appointmentRepo repository.AppointmentRepository,
	consultationRepo repository.ConsultationRepository,
	locator *AppointmentLocator,
	auditService service.AuditService,
	statsCache service.StatsCache,
	now func() time.Time,
) ConsultationUsecase {
	if now == nil {
		now = time.Now
	}
	return &consultationUsecase{
		db:               db,
		log:              log,
		userRepo:         userRepo,
		appointmentRepo:  appointmentRepo,
		consultationRepo: consultationRepo,
		locator:          locator,
		auditService:     auditService,
		statsCache:       statsCache,
		now:              now,
	}
}

// Create records a consultation and completes its appointment.
//
// Flow (single transaction):
// 1. Validate the doctor
// 2. Locate the appointment (explicit id or today's latest confirmed)
// 3. Reject a second consultation for the same appointment
// 4. Insert the consultation
// 5. Advance the appointment to completed
// 6. Audit both writes, commit, drop cached stats
func (u *consultationUsecase) Create(ctx context.Context, req *dto.CreateConsultationRequest, doctorID uuid.UUID) (*dto.ConsultationResponse, error) {
	if req.Fee != nil && req.Fee.IsNegative() {
		return nil, ErrNegativeFee
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Step 1: Validate doctor
	doctor, err := u.userRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil || !doctor.IsDoctor() {
		return nil, ErrDoctorNotFound
	}

	// Step 2: Locate appointment
	appointment, err := u.locator.Locate(tx, req.PatientID, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	// Step 3: Duplicate guard
	existing, err := u.consultationRepo.FindByAppointmentID(tx, appointment.ID)
	if err != nil {
		u.log.Warnf("Failed to check existing consultation for appointment %s: %+v", appointment.ID, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrConsultationExists
	}

	// Step 4: Insert consultation. The patient id comes from the request, not the appointment.
	appointmentID := appointment.ID
	consultation := &entity.Consultation{
		AppointmentID:    &appointmentID,
		PatientID:        req.PatientID,
		DoctorID:         doctorID,
		ConsultationDate: u.now(),
		Motif:            req.Motif,
		History:          req.History,
		Anamnesis:        req.Anamnesis,
		ClinicalExam:     req.ClinicalExam,
		Plan:             req.Plan,
		Treatment:        req.Treatment,
		Status:           entity.ConsultationStatusCompleted,
		IsPaid:           req.IsPaid,
		Fee:              decimal.Zero,
	}
	if req.Fee != nil {
		consultation.Fee = *req.Fee
	}

	if err := u.consultationRepo.Create(tx, consultation); err != nil {
		if isDuplicateKeyError(err, "appointment") {
			return nil, ErrConsultationExists
		}
		u.log.Warnf("Failed to create consultation: %+v", err)
		return nil, err
	}

	// Step 5: Advance appointment
	affected, err := u.appointmentRepo.UpdateStatus(tx, appointment.ID, entity.AppointmentStatusCompleted)
	if err != nil {
		u.log.Warnf("Failed to complete appointment %s: %+v", appointment.ID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentNotFound
	}

	// Step 6: Audit
	if err := u.auditService.LogCreate(tx, &doctorID, entity.AuditActionConsultationCreate,
		consultationTarget(consultation.ID), converter.ConsultationToResponse(consultation)); err != nil {
		return nil, err
	}
	if err := u.auditService.LogUpdate(tx, &doctorID, entity.AuditActionAppointmentStatusUpdate,
		appointmentTarget(appointment.ID),
		map[string]interface{}{"status": appointment.Status},
		map[string]interface{}{"status": entity.AppointmentStatusCompleted}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.statsCache.Invalidate(ctx, doctorID)
	u.log.Infof("Consultation created: id=%s, appointment=%s, patient=%s, doctor=%s",
		consultation.ID, appointment.ID, consultation.PatientID, doctorID)

	return u.reload(ctx, consultation), nil
}

// CreateOrUpdate updates the consultation already recorded for the
// request's appointment, or creates one when there is none.
func (u *consultationUsecase) CreateOrUpdate(ctx context.Context, req *dto.CreateConsultationRequest, doctorID uuid.UUID) (*dto.ConsultationResponse, error) {
	if req.AppointmentID != nil {
		existing, err := u.consultationRepo.FindByAppointmentID(u.db.WithContext(ctx), *req.AppointmentID)
		if err != nil {
			u.log.Warnf("Failed to find consultation for appointment %s: %+v", *req.AppointmentID, err)
			return nil, err
		}
		if existing != nil {
			return u.Update(ctx, existing.ID.String(), updateRequestFrom(req), &doctorID)
		}
	}

	return u.Create(ctx, req, doctorID)
}

// Update applies the non-nil request fields. With a doctor scope, a
// consultation owned by someone else is reported as not found.
func (u *consultationUsecase) Update(ctx context.Context, id string, req *dto.UpdateConsultationRequest, doctorID *uuid.UUID) (*dto.ConsultationResponse, error) {
	consultationID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidConsultationID
	}
	if req.Fee != nil && req.Fee.IsNegative() {
		return nil, ErrNegativeFee
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	consultation, err := u.consultationRepo.FindOwned(tx, consultationID, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	before := converter.ConsultationToResponse(consultation)
	patch := patchFrom(req)

	if err := u.consultationRepo.Update(tx, consultationID, patch); err != nil {
		u.log.Warnf("Failed to update consultation %s: %+v", consultationID, err)
		return nil, err
	}
	patch.Apply(consultation)

	if err := u.auditService.LogUpdate(tx, doctorID, entity.AuditActionConsultationUpdate,
		consultationTarget(consultationID), before, converter.ConsultationToResponse(consultation)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.statsCache.Invalidate(ctx, consultation.DoctorID)
	u.log.Infof("Consultation updated: id=%s", consultationID)

	return u.reload(ctx, consultation), nil
}

// Remove deletes a consultation and reverts its appointment to confirmed.
// A vanished appointment is skipped; any other failure rolls both writes back.
func (u *consultationUsecase) Remove(ctx context.Context, id string, doctorID *uuid.UUID) error {
	consultationID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidConsultationID
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	consultation, err := u.consultationRepo.FindOwned(tx, consultationID, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return err
	}
	if consultation == nil {
		return ErrConsultationNotFound
	}

	if consultation.AppointmentID != nil {
		appointmentID := *consultation.AppointmentID
		affected, err := u.appointmentRepo.UpdateStatus(tx, appointmentID, entity.AppointmentStatusConfirmed)
		if err != nil {
			u.log.Warnf("Failed to revert appointment %s: %+v", appointmentID, err)
			return err
		}
		if affected == 0 {
			u.log.Debugf("Appointment %s no longer exists, skipping status revert", appointmentID)
		} else if err := u.auditService.LogUpdate(tx, doctorID, entity.AuditActionAppointmentStatusUpdate,
			appointmentTarget(appointmentID),
			map[string]interface{}{"status": entity.AppointmentStatusCompleted},
			map[string]interface{}{"status": entity.AppointmentStatusConfirmed}); err != nil {
			return err
		}
	}

	affected, err := u.consultationRepo.Delete(tx, consultationID)
	if err != nil {
		u.log.Warnf("Failed to delete consultation %s: %+v", consultationID, err)
		return err
	}
	if affected == 0 {
		return ErrConsultationNotFound
	}

	if err := u.auditService.LogDelete(tx, doctorID, entity.AuditActionConsultationDelete,
		consultationTarget(consultationID), converter.ConsultationToResponse(consultation)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.statsCache.Invalidate(ctx, consultation.DoctorID)
	u.log.Infof("Consultation deleted: id=%s", consultationID)
	return nil
}

func (u *consultationUsecase) FindOne(ctx context.Context, id string) (*dto.ConsultationResponse, error) {
	consultationID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidConsultationID
	}

	consultation, err := u.consultationRepo.FindByID(u.db.WithContext(ctx), consultationID)
	if err != nil {
		u.log.Warnf("Failed to find consultation %s: %+v", consultationID, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}
	return converter.ConsultationToResponse(consultation), nil
}

// FindByAppointment returns nil without error when the appointment has no consultation.
func (u *consultationUsecase) FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.ConsultationResponse, error) {
	consultation, err := u.consultationRepo.FindByAppointmentID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find consultation for appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	return converter.ConsultationToResponse(consultation), nil
}

// reload fetches the record with its relations, falling back to what we hold.
func (u *consultationUsecase) reload(ctx context.Context, consultation *entity.Consultation) *dto.ConsultationResponse {
	full, err := u.consultationRepo.FindByID(u.db.WithContext(ctx), consultation.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload consultation %s: %+v", consultation.ID, err)
		return converter.ConsultationToResponse(consultation)
	}
	return converter.ConsultationToResponse(full)
}

func patchFrom(req *dto.UpdateConsultationRequest) *entity.ConsultationPatch {
	return &entity.ConsultationPatch{
		Motif:        req.Motif,
		History:      req.History,
		Anamnesis:    req.Anamnesis,
		ClinicalExam: req.ClinicalExam,
		Plan:         req.Plan,
		Treatment:    req.Treatment,
		IsPaid:       req.IsPaid,
		Fee:          req.Fee,
	}
}

// updateRequestFrom turns a repeated create submission into a full overwrite.
func updateRequestFrom(req *dto.CreateConsultationRequest) *dto.UpdateConsultationRequest {
	isPaid := req.IsPaid
	return &dto.UpdateConsultationRequest{
		Motif:        &req.Motif,
		History:      &req.History,
		Anamnesis:    &req.Anamnesis,
		ClinicalExam: &req.ClinicalExam,
		Plan:         &req.Plan,
		Treatment:    &req.Treatment,
		IsPaid:       &isPaid,
		Fee:          req.Fee,
	}
}

func consultationTarget(id uuid.UUID) service.AuditTarget {
	return service.AuditTarget{Entity: "consultation", ID: id.String()}
}

func appointmentTarget(id uuid.UUID) service.AuditTarget {
	return service.AuditTarget{Entity: "appointment", ID: id.String()}
}
