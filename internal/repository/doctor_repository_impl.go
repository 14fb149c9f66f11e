package repository

import (
	"errors"

	"doctor-scheduling/internal/domain/entity"
	domainRepo "doctor-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) FindByID(db *gorm.DB, id uint) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindAll(db *gorm.DB) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.Order("id ASC").Find(&doctors).Error
	return doctors, err
}

func (r *doctorRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&entity.Doctor{}).Count(&count).Error
	return count, err
}
