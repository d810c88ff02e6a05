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
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AppointmentUsecase is the scheduling side: plain creation and status changes.
type AppointmentUsecase interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest, sessionID *uuid.UUID) (*dto.AppointmentResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) (*dto.AppointmentListResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest, actorID *uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	doctorResolver  DoctorResolver
	auditService    service.AuditService
	location        *time.Location
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	doctorResolver DoctorResolver,
	auditService service.AuditService,
	location *time.Location,
) AppointmentUsecase {
	if location == nil {
		location = time.Local
	}
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		doctorResolver:  doctorResolver,
		auditService:    auditService,
		location:        location,
	}
}

func (u *appointmentUsecase) Create(ctx context.Context, req *dto.CreateAppointmentRequest, sessionID *uuid.UUID) (*dto.AppointmentResponse, error) {
	date, err := time.ParseInLocation(dayLayout, req.Date, u.location)
	if err != nil {
		return nil, ErrInvalidAppointmentDate
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, ErrInvalidAppointmentDate
	}

	appointmentType := entity.AppointmentTypeConsultation
	if req.Type != "" {
		appointmentType = entity.AppointmentType(req.Type)
		if !appointmentType.IsValid() {
			return nil, ErrInvalidAppointmentType
		}
	}

	doctorID, err := u.doctorResolver.ResolveDoctor(ctx, sessionID, req.DoctorID)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByID(tx, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	appointment := &entity.Appointment{
		PatientID: req.PatientID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      req.Time,
		Type:      appointmentType,
		Notes:     req.Notes,
		Status:    entity.AppointmentStatusPending,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isForeignKeyError(err, "doctor") {
			return nil, ErrDoctorNotFound
		}
		if isForeignKeyError(err, "patient") {
			return nil, ErrPatientNotFound
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(tx, sessionID, entity.AuditActionAppointmentCreate,
		appointmentTarget(appointment.ID), converter.AppointmentToResponse(appointment)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment created: id=%s, patient=%s, doctor=%s, date=%s %s",
		appointment.ID, appointment.PatientID, doctorID, req.Date, req.Time)

	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

func (u *appointmentUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) ListByPatient(ctx context.Context, patientID uuid.UUID) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// UpdateStatus sets any of the six statuses; no transition table is enforced.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest, actorID *uuid.UUID) (*dto.AppointmentResponse, error) {
	status := entity.AppointmentStatus(req.Status)
	if !status.IsValid() {
		return nil, ErrInvalidAppointmentStatus
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	affected, err := u.appointmentRepo.UpdateStatus(tx, id, status)
	if err != nil {
		u.log.Warnf("Failed to update appointment %s status: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentNotFound
	}

	if err := u.auditService.LogUpdate(tx, actorID, entity.AuditActionAppointmentStatusUpdate,
		appointmentTarget(id),
		map[string]interface{}{"status": appointment.Status},
		map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment status updated: id=%s, %s -> %s", id, appointment.Status, status)
	appointment.Status = status
	return converter.AppointmentToResponse(appointment), nil
}
