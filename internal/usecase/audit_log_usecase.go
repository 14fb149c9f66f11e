package usecase

import (
	"context"
	"fmt"

	"doctor-scheduling/internal/converter"
	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultAuditLogLimit = 100
	maxAuditLogLimit     = 1000
)

type AuditLogUsecase interface {
	GetAuditLogs(ctx context.Context, limit int) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// GetAuditLogs returns the newest entries first
func (u *auditLogUsecase) GetAuditLogs(ctx context.Context, limit int) (*dto.AuditLogListResponse, error) {
	if limit <= 0 {
		limit = defaultAuditLogLimit
	}
	if limit > maxAuditLogLimit {
		limit = maxAuditLogLimit
	}

	logs, err := u.auditLogRepo.FindAll(u.db.WithContext(ctx), limit)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, fmt.Errorf("find audit logs: %w", err)
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}
