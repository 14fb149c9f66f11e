package repository

import (
	"errors"
	"time"

	"doctor-scheduling/internal/domain/entity"
	domainRepo "doctor-scheduling/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit("Patient", "Doctor", "Hospital").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uint) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// FindActiveByDoctorBetween returns active appointments whose start lies in [from, to)
func (r *appointmentRepository) FindActiveByDoctorBetween(db *gorm.DB, doctorID uint, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("doctor_id = ? AND start_at >= ? AND start_at < ? AND status IN ?",
		doctorID, from.UTC(), to.UTC(), entity.ActiveStatuses).
		Order("start_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindByDoctorBetween returns appointments of any status whose start lies in [from, to)
func (r *appointmentRepository) FindByDoctorBetween(db *gorm.DB, doctorID uint, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("doctor_id = ? AND start_at >= ? AND start_at < ?", doctorID, from.UTC(), to.UTC()).
		Order("start_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID uint) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("patient_id = ?", patientID).
		Order("start_at DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindActiveHighRisk(db *gorm.DB, threshold float64) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("status IN ? AND no_show_probability >= ?", entity.ActiveStatuses, threshold).
		Order("no_show_probability DESC, start_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// CountNoShowsByPatient counts no-show appointments, optionally only those starting at or after since
func (r *appointmentRepository) CountNoShowsByPatient(db *gorm.DB, patientID uint, since *time.Time) (int64, error) {
	var count int64
	query := db.Model(&entity.Appointment{}).
		Where("patient_id = ? AND status = ?", patientID, entity.AppointmentStatusNoShow)
	if since != nil {
		query = query.Where("start_at >= ?", since.UTC())
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *appointmentRepository) CountByStatus(db *gorm.DB) (map[entity.AppointmentStatus]int64, error) {
	var rows []struct {
		Status entity.AppointmentStatus
		Total  int64
	}
	err := db.Model(&entity.Appointment{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.AppointmentStatus]int64, len(entity.AllStatuses))
	for _, status := range entity.AllStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		status, err := entity.ParseAppointmentStatus(string(row.Status))
		if err != nil {
			continue
		}
		counts[status] += row.Total
	}
	return counts, nil
}

func (r *appointmentRepository) AverageActiveProbability(db *gorm.DB) (float64, error) {
	var avg float64
	err := db.Model(&entity.Appointment{}).
		Select("COALESCE(AVG(no_show_probability), 0)").
		Where("status IN ?", entity.ActiveStatuses).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg, nil
}

// Cancel atomically cancels an appointment ONLY if it is still active and releases its slot.
// Returns affected rows: 1 = success, 0 = not active anymore (prevents double-cancel race).
func (r *appointmentRepository) Cancel(db *gorm.DB, id uint, at time.Time) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id, entity.ActiveStatuses).
		Updates(map[string]interface{}{
			"status":          entity.AppointmentStatusCancelled,
			"cancelled_at":    at.UTC(),
			"updated_at":      at.UTC(),
			"active_start_at": nil,
		})
	return result.RowsAffected, result.Error
}
