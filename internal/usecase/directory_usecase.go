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

// DirectoryUsecase serves read-only doctor and patient lookups
type DirectoryUsecase interface {
	GetDoctor(ctx context.Context, doctorID uint) (*dto.DoctorResponse, error)
	ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	ListPatients(ctx context.Context) (*dto.PatientListResponse, error)
}

type directoryUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	doctorRepo  repository.DoctorRepository
	patientRepo repository.PatientRepository
}

func NewDirectoryUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
) DirectoryUsecase {
	return &directoryUsecase{
		db:          db,
		log:         log,
		doctorRepo:  doctorRepo,
		patientRepo: patientRepo,
	}
}

func (u *directoryUsecase) GetDoctor(ctx context.Context, doctorID uint) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	if doctor == nil {
		return nil, notFound("doctor")
	}
	return converter.DoctorToResponse(doctor), nil
}

func (u *directoryUsecase) ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, fmt.Errorf("list doctors: %w", err)
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *directoryUsecase) ListPatients(ctx context.Context) (*dto.PatientListResponse, error) {
	patients, err := u.patientRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, fmt.Errorf("list patients: %w", err)
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    len(patients),
	}, nil
}
