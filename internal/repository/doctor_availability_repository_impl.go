package repository

import (
	"errors"

	"doctor-scheduling/internal/domain/entity"
	domainRepo "doctor-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

type doctorAvailabilityRepository struct{}

func NewDoctorAvailabilityRepository() domainRepo.DoctorAvailabilityRepository {
	return &doctorAvailabilityRepository{}
}

func (r *doctorAvailabilityRepository) Create(db *gorm.DB, availability *entity.DoctorAvailability) error {
	return db.Omit("Doctor").Create(availability).Error
}

func (r *doctorAvailabilityRepository) FindByID(db *gorm.DB, id uint) (*entity.DoctorAvailability, error) {
	var availability entity.DoctorAvailability
	err := db.Where("id = ?", id).First(&availability).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &availability, nil
}

func (r *doctorAvailabilityRepository) FindByDoctorID(db *gorm.DB, doctorID uint) ([]entity.DoctorAvailability, error) {
	var availabilities []entity.DoctorAvailability
	err := db.Where("doctor_id = ?", doctorID).
		Order("day_of_week ASC, start_time ASC").
		Find(&availabilities).Error
	if err != nil {
		return nil, err
	}
	return availabilities, nil
}

func (r *doctorAvailabilityRepository) FindEnabledByDoctorAndDay(db *gorm.DB, doctorID uint, dayOfWeek int) ([]entity.DoctorAvailability, error) {
	var availabilities []entity.DoctorAvailability
	err := db.Where("doctor_id = ? AND day_of_week = ? AND is_available = ?", doctorID, dayOfWeek, true).
		Order("start_time ASC").
		Find(&availabilities).Error
	if err != nil {
		return nil, err
	}
	return availabilities, nil
}

func (r *doctorAvailabilityRepository) Update(db *gorm.DB, availability *entity.DoctorAvailability) error {
	return db.Omit("Doctor").Save(availability).Error
}
