package usecase

import (
	"io"
	"testing"
	"time"

	"doctor-scheduling/config"
	"doctor-scheduling/internal/domain/entity"
	domainRepo "doctor-scheduling/internal/domain/repository"
	"doctor-scheduling/internal/infrastructure/database"
	"doctor-scheduling/internal/repository"
	"doctor-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testPatientID  uint = 11
	testDoctorID   uint = 1
	testHospitalID uint = 1
)

// fixedNow is a Monday
var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewConnection(config.DBConfig{Driver: database.DriverSQLite, Name: ":memory:"}, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hospitalID := testHospitalID
	require.NoError(t, db.Create(&entity.Hospital{ID: testHospitalID, Name: "General Hospital"}).Error)
	require.NoError(t, db.Create(&entity.Doctor{
		ID:                   testDoctorID,
		HospitalID:           &hospitalID,
		FirstName:            "Ada",
		LastName:             "Lovelace",
		Specialization:       "Cardiology",
		Email:                "ada@example.com",
		ConsultationDuration: 30,
	}).Error)
	require.NoError(t, db.Create(&entity.Doctor{
		ID:                   2,
		FirstName:            "Idle",
		LastName:             "Doctor",
		Email:                "idle@example.com",
		ConsultationDuration: 20,
	}).Error)
	require.NoError(t, db.Create(&entity.Patient{
		ID:        testPatientID,
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	}).Error)
	require.NoError(t, db.Create(&entity.Patient{
		ID:             12,
		FirstName:      "Alan",
		LastName:       "Turing",
		Email:          "alan@example.com",
		MedicalHistory: "hypertension",
	}).Error)

	availability := []entity.DoctorAvailability{
		{DoctorID: testDoctorID, DayOfWeek: 0, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		{DoctorID: testDoctorID, DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00", IsAvailable: false},
		{DoctorID: testDoctorID, DayOfWeek: 6, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
	}
	require.NoError(t, db.Create(&availability).Error)

	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestAppointmentUsecase wires the appointment usecase against db with the clock fixed at fixedNow
func newTestAppointmentUsecase(db *gorm.DB, predictor service.NoShowPredictor, slotCache *service.SlotCacheService) *appointmentUsecase {
	return newTestAppointmentUsecaseWithRepo(db, predictor, slotCache, repository.NewAppointmentRepository())
}

func newTestAppointmentUsecaseWithRepo(db *gorm.DB, predictor service.NoShowPredictor, slotCache *service.SlotCacheService, appointmentRepo domainRepo.AppointmentRepository) *appointmentUsecase {
	log := quietLogger()
	if predictor == nil {
		predictor = service.NewFallbackPredictor(0.5)
	}

	u := NewAppointmentUsecase(
		db, log, config.DefaultSchedulingConfig(), 0.5,
		appointmentRepo,
		repository.NewDoctorRepository(),
		repository.NewPatientRepository(),
		repository.NewHospitalRepository(),
		service.NewAvailabilityIndex(log, repository.NewDoctorAvailabilityRepository()),
		predictor,
		slotCache,
		service.NewAuditService(log, repository.NewAuditLogRepository()),
	).(*appointmentUsecase)
	u.now = func() time.Time { return fixedNow }
	return u
}
