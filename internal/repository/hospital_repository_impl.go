package repository

import (
	"errors"

	"doctor-scheduling/internal/domain/entity"
	domainRepo "doctor-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

type hospitalRepository struct{}

func NewHospitalRepository() domainRepo.HospitalRepository {
	return &hospitalRepository{}
}

func (r *hospitalRepository) FindByID(db *gorm.DB, id uint) (*entity.Hospital, error) {
	var hospital entity.Hospital
	err := db.Where("id = ?", id).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hospital, nil
}
