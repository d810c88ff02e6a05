package usecase

import (
	"context"

	"go-clinic-workflow/config"
	"go-clinic-workflow/internal/domain/entity"
	"go-clinic-workflow/internal/domain/repository"
	"go-clinic-workflow/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DoctorResolver decides which doctor an operation is attributed to.
type DoctorResolver interface {
	// ResolveDoctor prefers the session identity, then the explicit id,
	// then the first registered doctor, then a provisioned default one.
	ResolveDoctor(ctx context.Context, sessionID, explicitID *uuid.UUID) (uuid.UUID, error)
	// EnsureDefaultDoctor returns an existing doctor or creates the placeholder.
	// created reports whether this call inserted it.
	EnsureDefaultDoctor(ctx context.Context) (doctor *entity.User, created bool, err error)
}

type doctorResolver struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
	cfg          config.ConsultationConfig
	hashCost     int
}

func NewDoctorResolver(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	cfg config.ConsultationConfig,
) DoctorResolver {
	return &doctorResolver{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
		cfg:          cfg,
		hashCost:     bcrypt.DefaultCost,
	}
}

func (u *doctorResolver) ResolveDoctor(ctx context.Context, sessionID, explicitID *uuid.UUID) (uuid.UUID, error) {
	// The session is authoritative; a payload doctor id is discarded.
	if sessionID != nil {
		return *sessionID, nil
	}

	db := u.db.WithContext(ctx)

	if explicitID != nil {
		doctor, err := u.userRepo.FindByID(db, *explicitID)
		if err != nil {
			u.log.Warnf("Failed to find doctor %s: %+v", *explicitID, err)
			return uuid.Nil, err
		}
		if doctor == nil || !doctor.IsDoctor() {
			return uuid.Nil, ErrDoctorNotFound
		}
		return doctor.ID, nil
	}

	doctor, err := u.userRepo.FindFirstByRole(db, entity.RoleIDDoctor)
	if err != nil {
		u.log.Warnf("Failed to find a doctor: %+v", err)
		return uuid.Nil, err
	}
	if doctor != nil {
		return doctor.ID, nil
	}

	if !u.cfg.AutoProvisionDoctor {
		return uuid.Nil, ErrNoDoctorAvailable
	}

	doctor, _, err = u.EnsureDefaultDoctor(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return doctor.ID, nil
}

func (u *doctorResolver) EnsureDefaultDoctor(ctx context.Context) (*entity.User, bool, error) {
	db := u.db.WithContext(ctx)

	existing, err := u.userRepo.FindFirstByRole(db, entity.RoleIDDoctor)
	if err != nil {
		u.log.Warnf("Failed to find a doctor: %+v", err)
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.cfg.DefaultDoctorPassword), u.hashCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, false, err
	}

	isActive := true
	doctor := &entity.User{
		RoleID:   entity.RoleIDDoctor,
		Email:    u.cfg.DefaultDoctorEmail,
		Password: string(hashedPassword),
		FullName: u.cfg.DefaultDoctorName,
		IsActive: &isActive,
	}

	tx := db.Begin()
	defer tx.Rollback()

	if err := u.userRepo.Create(tx, doctor); err != nil {
		if isDuplicateKeyError(err, "email") {
			// A concurrent request provisioned it first; the failed tx is unusable.
			tx.Rollback()
			return u.adoptExistingDefault(db)
		}
		u.log.Warnf("Failed to create default doctor: %+v", err)
		return nil, false, err
	}

	target := service.AuditTarget{Entity: "user", ID: doctor.ID.String()}
	snapshot := map[string]interface{}{"email": doctor.Email, "full_name": doctor.FullName}
	if err := u.auditService.LogCreate(tx, nil, entity.AuditActionDoctorProvision, target, snapshot); err != nil {
		return nil, false, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, false, err
	}

	u.log.Infof("Default doctor provisioned: id=%s, email=%s", doctor.ID, doctor.Email)
	return doctor, true, nil
}

func (u *doctorResolver) adoptExistingDefault(db *gorm.DB) (*entity.User, bool, error) {
	winner, err := u.userRepo.FindByEmail(db, u.cfg.DefaultDoctorEmail)
	if err != nil {
		u.log.Warnf("Failed to re-read default doctor: %+v", err)
		return nil, false, err
	}
	if winner == nil || !winner.IsDoctor() {
		return nil, false, ErrNoDoctorAvailable
	}
	return winner, false, nil
}
