package service

import (
	"go-clinic-workflow/internal/domain/entity"
	"go-clinic-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditTarget identifies the record an audit entry is about.
type AuditTarget struct {
	Entity string
	ID     string
}

// AuditService writes audit_logs rows through the caller's transaction,
// so an entry only survives if the audited change commits.
type AuditService interface {
	LogCreate(tx *gorm.DB, actorID *uuid.UUID, action string, target AuditTarget, newValue interface{}) error
	LogUpdate(tx *gorm.DB, actorID *uuid.UUID, action string, target AuditTarget, oldValue, newValue interface{}) error
	LogDelete(tx *gorm.DB, actorID *uuid.UUID, action string, target AuditTarget, oldValue interface{}) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogCreate(tx *gorm.DB, actorID *uuid.UUID, action string, target AuditTarget, newValue interface{}) error {
	return s.write(tx, actorID, action, target, nil, newValue)
}

func (s *auditService) LogUpdate(tx *gorm.DB, actorID *uuid.UUID, action string, target AuditTarget, oldValue, newValue interface{}) error {
	return s.write(tx, actorID, action, target, oldValue, newValue)
}

func (s *auditService) LogDelete(tx *gorm.DB, actorID *uuid.UUID, action string, target AuditTarget, oldValue interface{}) error {
	return s.write(tx, actorID, action, target, oldValue, nil)
}

func (s *auditService) write(tx *gorm.DB, actorID *uuid.UUID, action string, target AuditTarget, oldValue, newValue interface{}) error {
	auditLog := &entity.AuditLog{
		UserID: actorID,
		Action: action,
		Metadata: entity.JSON{
			"entity":    target.Entity,
			"entity_id": target.ID,
			"old_value": oldValue,
			"new_value": newValue,
		},
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log for %s %s: %+v", target.Entity, target.ID, err)
		return err
	}
	return nil
}
