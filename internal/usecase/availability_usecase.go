package usecase

import (
	"context"
	"fmt"

	"doctor-scheduling/internal/converter"
	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/domain/entity"
	"doctor-scheduling/internal/domain/repository"
	"doctor-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AvailabilityUsecase interface {
	GetDoctorAvailability(ctx context.Context, doctorID uint) (*dto.AvailabilityListResponse, error)
	CreateAvailability(ctx context.Context, req *dto.CreateAvailabilityRequest) (*dto.AvailabilityResponse, error)
	UpdateAvailability(ctx context.Context, doctorID, availabilityID uint, req *dto.UpdateAvailabilityRequest) (*dto.AvailabilityResponse, error)
}

type availabilityUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	availabilityRepo repository.DoctorAvailabilityRepository
	doctorRepo       repository.DoctorRepository
	slotCache        *service.SlotCacheService
	auditService     service.AuditService
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	availabilityRepo repository.DoctorAvailabilityRepository,
	doctorRepo repository.DoctorRepository,
	slotCache *service.SlotCacheService,
	auditService service.AuditService,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:               db,
		log:              log,
		availabilityRepo: availabilityRepo,
		doctorRepo:       doctorRepo,
		slotCache:        slotCache,
		auditService:     auditService,
	}
}

func (u *availabilityUsecase) GetDoctorAvailability(ctx context.Context, doctorID uint) (*dto.AvailabilityListResponse, error) {
	db := u.db.WithContext(ctx)

	if err := u.ensureDoctor(db, doctorID); err != nil {
		return nil, err
	}

	availabilities, err := u.availabilityRepo.FindByDoctorID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find availability of doctor %d: %+v", doctorID, err)
		return nil, fmt.Errorf("find availability: %w", err)
	}

	return &dto.AvailabilityListResponse{
		Availability: converter.AvailabilitiesToResponses(availabilities),
		Total:        len(availabilities),
	}, nil
}

func (u *availabilityUsecase) CreateAvailability(ctx context.Context, req *dto.CreateAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	if req.DayOfWeek == nil {
		return nil, validationError("day_of_week is required")
	}

	availability := &entity.DoctorAvailability{
		DoctorID:    req.DoctorID,
		DayOfWeek:   *req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		availability.IsAvailable = *req.IsAvailable
	}
	if err := validateAvailability(availability); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	if err := u.ensureDoctor(tx, req.DoctorID); err != nil {
		return nil, err
	}

	if err := u.availabilityRepo.Create(tx, availability); err != nil {
		u.log.Warnf("Failed to create availability: %+v", err)
		return nil, fmt.Errorf("create availability: %w", err)
	}

	response := converter.AvailabilityToResponse(availability)
	if err := u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionAvailabilityCreate, "doctor_availability", availability.ID, response); err != nil {
		return nil, fmt.Errorf("write audit log: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit availability: %+v", err)
		return nil, fmt.Errorf("commit availability: %w", err)
	}

	u.invalidate(ctx, req.DoctorID)

	u.log.Infof("Availability created: id=%d, doctor=%d, day=%d", availability.ID, availability.DoctorID, availability.DayOfWeek)
	return response, nil
}

func (u *availabilityUsecase) UpdateAvailability(ctx context.Context, doctorID, availabilityID uint, req *dto.UpdateAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	availability, err := u.availabilityRepo.FindByID(tx, availabilityID)
	if err != nil {
		u.log.Warnf("Failed to find availability %d: %+v", availabilityID, err)
		return nil, fmt.Errorf("find availability: %w", err)
	}
	if availability == nil || availability.DoctorID != doctorID {
		return nil, notFound("availability")
	}

	oldValue := converter.AvailabilityToResponse(availability)

	if req.DayOfWeek != nil {
		availability.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		availability.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		availability.EndTime = *req.EndTime
	}
	if req.IsAvailable != nil {
		availability.IsAvailable = *req.IsAvailable
	}
	if err := validateAvailability(availability); err != nil {
		return nil, err
	}

	if err := u.availabilityRepo.Update(tx, availability); err != nil {
		u.log.Warnf("Failed to update availability %d: %+v", availabilityID, err)
		return nil, fmt.Errorf("update availability: %w", err)
	}

	response := converter.AvailabilityToResponse(availability)
	if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionAvailabilityUpdate, "doctor_availability", availability.ID, oldValue, response); err != nil {
		return nil, fmt.Errorf("write audit log: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit availability %d: %+v", availabilityID, err)
		return nil, fmt.Errorf("commit availability: %w", err)
	}

	u.invalidate(ctx, doctorID)

	u.log.Infof("Availability updated: id=%d, doctor=%d", availabilityID, doctorID)
	return response, nil
}

func (u *availabilityUsecase) ensureDoctor(db *gorm.DB, doctorID uint) error {
	doctor, err := u.doctorRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return fmt.Errorf("find doctor: %w", err)
	}
	if doctor == nil {
		return notFound("doctor")
	}
	return nil
}

func (u *availabilityUsecase) invalidate(ctx context.Context, doctorID uint) {
	if err := u.slotCache.InvalidateDoctor(ctx, doctorID); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %d (non-fatal): %+v", doctorID, err)
	}
}

func validateAvailability(availability *entity.DoctorAvailability) error {
	if availability.DayOfWeek < 0 || availability.DayOfWeek > 6 {
		return validationError("day_of_week must be between 0 (Monday) and 6 (Sunday)")
	}
	if _, err := availability.Window(); err != nil {
		return validationError("%s", err.Error())
	}
	return nil
}
