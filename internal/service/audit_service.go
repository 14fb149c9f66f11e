package service

import (
	"context"

	"doctor-scheduling/internal/domain/entity"
	"doctor-scheduling/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	LogCreate(ctx context.Context, tx *gorm.DB, actor string, action string, entityName string, entityID uint, newValue interface{}) error
	LogUpdate(ctx context.Context, tx *gorm.DB, actor string, action string, entityName string, entityID uint, oldValue, newValue interface{}) error
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

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, tx *gorm.DB, actor string, action string, entityName string, entityID uint, newValue interface{}) error {
	return s.write(ctx, tx, actor, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, tx *gorm.DB, actor string, action string, entityName string, entityID uint, oldValue, newValue interface{}) error {
	return s.write(ctx, tx, actor, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

func (s *auditService) write(ctx context.Context, tx *gorm.DB, actor string, action string, metadata entity.JSON) error {
	if actor == "" {
		actor = entity.AuditActorSystem
	}

	auditLog := &entity.AuditLog{
		Actor:    actor,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(tx.WithContext(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
