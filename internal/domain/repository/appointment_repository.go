package repository

import (
	"time"

	"doctor-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uint) (*entity.Appointment, error)
	FindActiveByDoctorBetween(db *gorm.DB, doctorID uint, from, to time.Time) ([]entity.Appointment, error)
	FindByDoctorBetween(db *gorm.DB, doctorID uint, from, to time.Time) ([]entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uint) ([]entity.Appointment, error)
	FindActiveHighRisk(db *gorm.DB, threshold float64) ([]entity.Appointment, error)
	CountNoShowsByPatient(db *gorm.DB, patientID uint, since *time.Time) (int64, error)
	CountByStatus(db *gorm.DB) (map[entity.AppointmentStatus]int64, error)
	AverageActiveProbability(db *gorm.DB) (float64, error)
	Cancel(db *gorm.DB, id uint, at time.Time) (int64, error)
}
