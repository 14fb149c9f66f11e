package service

import (
	"context"

	"doctor-scheduling/internal/domain/entity"
	"doctor-scheduling/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AvailabilityIndex resolves a doctor's recurring weekly windows for a weekday
type AvailabilityIndex struct {
	log              *logrus.Logger
	availabilityRepo repository.DoctorAvailabilityRepository
}

func NewAvailabilityIndex(log *logrus.Logger, availabilityRepo repository.DoctorAvailabilityRepository) *AvailabilityIndex {
	return &AvailabilityIndex{
		log:              log,
		availabilityRepo: availabilityRepo,
	}
}

// Windows returns the enabled windows for doctorID on weekday (0 = Monday).
// Overlapping rows are returned as separate windows. Rows with unusable times are skipped.
func (i *AvailabilityIndex) Windows(ctx context.Context, db *gorm.DB, doctorID uint, weekday int) ([]entity.TimeWindow, error) {
	rows, err := i.availabilityRepo.FindEnabledByDoctorAndDay(db.WithContext(ctx), doctorID, weekday)
	if err != nil {
		i.log.Warnf("Failed to find availability for doctor %d: %+v", doctorID, err)
		return nil, err
	}

	windows := make([]entity.TimeWindow, 0, len(rows))
	for idx := range rows {
		window, err := rows[idx].Window()
		if err != nil {
			i.log.Warnf("Skipping availability %d of doctor %d: %+v", rows[idx].ID, doctorID, err)
			continue
		}
		windows = append(windows, window)
	}
	return windows, nil
}
