package repository

import (
	"doctor-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorAvailabilityRepository interface {
	Create(db *gorm.DB, availability *entity.DoctorAvailability) error
	FindByID(db *gorm.DB, id uint) (*entity.DoctorAvailability, error)
	FindByDoctorID(db *gorm.DB, doctorID uint) ([]entity.DoctorAvailability, error)
	FindEnabledByDoctorAndDay(db *gorm.DB, doctorID uint, dayOfWeek int) ([]entity.DoctorAvailability, error)
	Update(db *gorm.DB, availability *entity.DoctorAvailability) error
}
