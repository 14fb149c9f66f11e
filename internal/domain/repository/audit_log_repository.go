package repository

import (
	"doctor-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(db *gorm.DB, log *entity.AuditLog) error
	FindAll(db *gorm.DB, limit int) ([]entity.AuditLog, error)
}
