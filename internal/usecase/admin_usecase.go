package usecase

import (
	"context"
	"fmt"
	"math"

	"doctor-scheduling/internal/converter"
	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/domain/entity"
	"doctor-scheduling/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AdminUsecase interface {
	GetHighRiskAppointments(ctx context.Context, threshold *float64) (*dto.HighRiskAppointmentsResponse, error)
	GetAnalytics(ctx context.Context) (*dto.AnalyticsResponse, error)
}

type adminUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	defaultThreshold float64
	appointmentRepo  repository.AppointmentRepository
	doctorRepo       repository.DoctorRepository
	patientRepo      repository.PatientRepository
}

func NewAdminUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	defaultThreshold float64,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
) AdminUsecase {
	return &adminUsecase{
		db:               db,
		log:              log,
		defaultThreshold: defaultThreshold,
		appointmentRepo:  appointmentRepo,
		doctorRepo:       doctorRepo,
		patientRepo:      patientRepo,
	}
}

// GetHighRiskAppointments lists active appointments at or above threshold, riskiest first
func (u *adminUsecase) GetHighRiskAppointments(ctx context.Context, threshold *float64) (*dto.HighRiskAppointmentsResponse, error) {
	limit := u.defaultThreshold
	if threshold != nil {
		limit = *threshold
	}
	if math.IsNaN(limit) || limit < 0 || limit > 1 {
		return nil, validationError("threshold must be between 0 and 1")
	}

	appointments, err := u.appointmentRepo.FindActiveHighRisk(u.db.WithContext(ctx), limit)
	if err != nil {
		u.log.Warnf("Failed to find high risk appointments: %+v", err)
		return nil, fmt.Errorf("find high risk appointments: %w", err)
	}

	return &dto.HighRiskAppointmentsResponse{
		Threshold:    limit,
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// GetAnalytics aggregates appointment outcomes.
// The no-show rate is taken over appointments that reached an attendance outcome.
func (u *adminUsecase) GetAnalytics(ctx context.Context) (*dto.AnalyticsResponse, error) {
	db := u.db.WithContext(ctx)

	totalPatients, err := u.patientRepo.Count(db)
	if err != nil {
		u.log.Warnf("Failed to count patients: %+v", err)
		return nil, fmt.Errorf("count patients: %w", err)
	}

	totalDoctors, err := u.doctorRepo.Count(db)
	if err != nil {
		u.log.Warnf("Failed to count doctors: %+v", err)
		return nil, fmt.Errorf("count doctors: %w", err)
	}

	byStatus, err := u.appointmentRepo.CountByStatus(db)
	if err != nil {
		u.log.Warnf("Failed to count appointments by status: %+v", err)
		return nil, fmt.Errorf("count appointments: %w", err)
	}

	avgProbability, err := u.appointmentRepo.AverageActiveProbability(db)
	if err != nil {
		u.log.Warnf("Failed to average no-show probability: %+v", err)
		return nil, fmt.Errorf("average probability: %w", err)
	}

	var total int64
	statusCounts := make(map[string]int64, len(byStatus))
	for status, count := range byStatus {
		statusCounts[string(status)] = count
		total += count
	}

	var noShowRate float64
	attended := byStatus[entity.AppointmentStatusCompleted] + byStatus[entity.AppointmentStatusNoShow]
	if attended > 0 {
		noShowRate = round4(float64(byStatus[entity.AppointmentStatusNoShow]) / float64(attended))
	}

	return &dto.AnalyticsResponse{
		TotalPatients:                 totalPatients,
		TotalDoctors:                  totalDoctors,
		TotalAppointments:             total,
		AppointmentsByStatus:          statusCounts,
		NoShowRate:                    noShowRate,
		AvgPredictedNoShowProbability: round4(avgProbability),
	}, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
