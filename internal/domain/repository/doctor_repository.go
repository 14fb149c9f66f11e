package repository

import (
	"doctor-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorRepository interface {
	FindByID(db *gorm.DB, id uint) (*entity.Doctor, error)
	FindAll(db *gorm.DB) ([]entity.Doctor, error)
	Count(db *gorm.DB) (int64, error)
}

type PatientRepository interface {
	FindByID(db *gorm.DB, id uint) (*entity.Patient, error)
	FindAll(db *gorm.DB) ([]entity.Patient, error)
	Count(db *gorm.DB) (int64, error)
}

type HospitalRepository interface {
	FindByID(db *gorm.DB, id uint) (*entity.Hospital, error)
}
