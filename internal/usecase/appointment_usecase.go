package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"doctor-scheduling/config"
	"doctor-scheduling/internal/converter"
	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/delivery/http/middleware"
	"doctor-scheduling/internal/domain/entity"
	"doctor-scheduling/internal/domain/repository"
	"doctor-scheduling/internal/infrastructure/database"
	"doctor-scheduling/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// overlapLookback bounds how far before a range an active appointment may start and still reach into it.
// Appointments are contained in a single availability window, so none is longer than a day.
const overlapLookback = 24 * time.Hour

type AppointmentUsecase interface {
	FindAvailableSlots(ctx context.Context, req *dto.AvailableSlotsRequest) (*dto.AvailableSlotsResponse, error)
	BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.BookAppointmentResponse, error)
	CancelAppointment(ctx context.Context, appointmentID uint) error
	GetPatientAppointments(ctx context.Context, patientID uint) (*dto.AppointmentListResponse, error)
	GetDoctorSchedule(ctx context.Context, req *dto.DoctorScheduleRequest) (*dto.DoctorScheduleResponse, error)
}

type appointmentUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	cfg                config.SchedulingConfig
	defaultProbability float64
	appointmentRepo    repository.AppointmentRepository
	doctorRepo         repository.DoctorRepository
	patientRepo        repository.PatientRepository
	hospitalRepo       repository.HospitalRepository
	availabilityIndex  *service.AvailabilityIndex
	predictor          service.NoShowPredictor
	slotCache          *service.SlotCacheService
	auditService       service.AuditService
	now                func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.SchedulingConfig,
	defaultProbability float64,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	hospitalRepo repository.HospitalRepository,
	availabilityIndex *service.AvailabilityIndex,
	predictor service.NoShowPredictor,
	slotCache *service.SlotCacheService,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                 db,
		log:                log,
		cfg:                cfg,
		defaultProbability: defaultProbability,
		appointmentRepo:    appointmentRepo,
		doctorRepo:         doctorRepo,
		patientRepo:        patientRepo,
		hospitalRepo:       hospitalRepo,
		availabilityIndex:  availabilityIndex,
		predictor:          predictor,
		slotCache:          slotCache,
		auditService:       auditService,
		now:                time.Now,
	}
}

// FindAvailableSlots lists the free start times of a doctor on the UTC date of req.Date.
// The result may come from the slot cache; booking always re-validates.
func (u *appointmentUsecase) FindAvailableSlots(ctx context.Context, req *dto.AvailableSlotsRequest) (*dto.AvailableSlotsResponse, error) {
	if req.ConsultationMinutes <= 0 {
		return nil, validationError("consultation minutes must be greater than 0")
	}
	if req.ConsultationMinutes > entity.MaxConsultationMinutes {
		return nil, validationError("consultation minutes must not exceed %d", entity.MaxConsultationMinutes)
	}

	date := entity.StartOfDayUTC(req.Date)
	db := u.db.WithContext(ctx)

	doctor, err := u.doctorRepo.FindByID(db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	if doctor == nil {
		return nil, notFound("doctor")
	}

	slots, cached := u.slotCache.Get(ctx, req.DoctorID, date, req.ConsultationMinutes)
	if !cached {
		// taken before the database read so a booking committed meanwhile refuses the fill
		version := u.slotCache.Version(ctx, req.DoctorID, date)
		slots, err = u.generateSlots(ctx, db, req.DoctorID, date, req.ConsultationMinutes)
		if err != nil {
			return nil, err
		}
		if err := u.slotCache.Set(ctx, req.DoctorID, date, req.ConsultationMinutes, slots, version); err != nil {
			u.log.Debugf("Slot cache not updated for doctor %d: %+v", req.DoctorID, err)
		}
	}

	return &dto.AvailableSlotsResponse{
		DoctorID:            req.DoctorID,
		Date:                date.Format(time.DateOnly),
		ConsultationMinutes: req.ConsultationMinutes,
		Slots:               slots,
		Total:               len(slots),
	}, nil
}

func (u *appointmentUsecase) generateSlots(ctx context.Context, db *gorm.DB, doctorID uint, date time.Time, consultationMinutes int) ([]time.Time, error) {
	windows, err := u.availabilityIndex.Windows(ctx, db, doctorID, entity.Weekday(date))
	if err != nil {
		return nil, fmt.Errorf("find availability: %w", err)
	}
	if len(windows) == 0 {
		return []time.Time{}, nil
	}

	// fetched once per call, every candidate is checked against the same snapshot
	appointments, err := u.appointmentRepo.FindActiveByDoctorBetween(db, doctorID, date.Add(-overlapLookback), date.AddDate(0, 0, 1))
	if err != nil {
		u.log.Warnf("Failed to find appointments of doctor %d: %+v", doctorID, err)
		return nil, fmt.Errorf("find appointments: %w", err)
	}

	return service.GenerateSlots(date, windows, entity.BusyIntervals(appointments), consultationMinutes, u.strideMinutes()), nil
}

// BookAppointment validates and persists a new appointment.
//
// Flow:
// 1. Patient, doctor and hospital must exist
// 2. Start must be in the future and inside the booking horizon
// 3. An enabled availability window must contain the whole appointment
// 4. No active appointment of the doctor may overlap (optimistic pre-check)
// 5. Score no-show risk, insert appointment and audit row in one transaction
//
// The unique index on (doctor_id, active_start_at) decides concurrent races:
// a violation at insert or commit is reported exactly like a failed pre-check.
func (u *appointmentUsecase) BookAppointment(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.BookAppointmentResponse, error) {
	start := req.StartAt.UTC().Truncate(time.Second)

	duration := req.DurationMinutes
	if duration < 0 {
		return nil, validationError("duration minutes must not be negative")
	}
	if duration > entity.MaxConsultationMinutes {
		return nil, validationError("duration minutes must not exceed %d", entity.MaxConsultationMinutes)
	}
	if duration == 0 {
		duration = u.defaultConsultationMinutes()
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	// Step 1: referenced records
	patient, err := u.patientRepo.FindByID(tx, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", req.PatientID, err)
		return nil, fmt.Errorf("find patient: %w", err)
	}
	if patient == nil {
		return nil, notFound("patient")
	}

	doctor, err := u.doctorRepo.FindByID(tx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	if doctor == nil {
		return nil, notFound("doctor")
	}

	hospital, err := u.hospitalRepo.FindByID(tx, req.HospitalID)
	if err != nil {
		u.log.Warnf("Failed to find hospital %d: %+v", req.HospitalID, err)
		return nil, fmt.Errorf("find hospital: %w", err)
	}
	if hospital == nil {
		return nil, notFound("hospital")
	}

	// Step 2: time bounds
	now := u.now().UTC()
	if !start.After(now) {
		return nil, &AppError{Kind: KindPastBooking, Message: "cannot book an appointment in the past"}
	}
	horizonDays := u.horizonDays()
	if start.After(now.Add(time.Duration(horizonDays) * 24 * time.Hour)) {
		return nil, &AppError{Kind: KindHorizon, Message: fmt.Sprintf("cannot book more than %d days ahead", horizonDays)}
	}

	// Step 3: availability containment
	windows, err := u.availabilityIndex.Windows(ctx, tx, req.DoctorID, entity.Weekday(start))
	if err != nil {
		return nil, fmt.Errorf("find availability: %w", err)
	}
	if !containedInAny(windows, start, end) {
		return nil, &AppError{Kind: KindOutsideAvailability, Message: "doctor is not available at the requested time"}
	}

	// Step 4: optimistic overlap check
	existing, err := u.appointmentRepo.FindActiveByDoctorBetween(tx, req.DoctorID, start.Add(-overlapLookback), end)
	if err != nil {
		u.log.Warnf("Failed to find appointments of doctor %d: %+v", req.DoctorID, err)
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	if entity.Conflicts(start, end, entity.BusyIntervals(existing)) {
		return nil, slotTaken()
	}

	// Step 5: score and persist
	history, err := u.noShowHistory(tx, req.PatientID, now)
	if err != nil {
		return nil, err
	}
	probability := u.scoreNoShow(service.BuildFeatures(patient, doctor, start, now, history))

	activeStart := start
	appointment := &entity.Appointment{
		PatientID:         req.PatientID,
		DoctorID:          req.DoctorID,
		HospitalID:        req.HospitalID,
		StartAt:           start,
		DurationMinutes:   duration,
		Status:            entity.AppointmentStatusScheduled,
		NoShowProbability: probability,
		Reason:            req.Reason,
		ActiveStartAt:     &activeStart,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if database.IsUniqueViolation(err) {
			u.log.Infof("Slot taken at insert: doctor=%d, start=%s", req.DoctorID, start.Format(time.RFC3339))
			return nil, slotTaken()
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	if err := u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentBook, "appointment", appointment.ID, converter.AppointmentToResponse(appointment)); err != nil {
		return nil, fmt.Errorf("write audit log: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		if database.IsUniqueViolation(err) {
			u.log.Infof("Slot taken at commit: doctor=%d, start=%s", req.DoctorID, start.Format(time.RFC3339))
			return nil, slotTaken()
		}
		u.log.Warnf("Failed to commit appointment: %+v", err)
		return nil, fmt.Errorf("commit appointment: %w", err)
	}

	u.invalidateSlots(ctx, req.DoctorID, start, end)

	u.log.Infof("Appointment booked: id=%d, doctor=%d, start=%s, probability=%.4f", appointment.ID, req.DoctorID, start.Format(time.RFC3339), probability)
	return &dto.BookAppointmentResponse{
		AppointmentID:     appointment.ID,
		NoShowProbability: probability,
	}, nil
}

// CancelAppointment moves an active appointment to cancelled and frees its slot.
// Cancelling a terminal appointment fails, including a second cancel.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, appointmentID uint) error {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", appointmentID, err)
		return fmt.Errorf("find appointment: %w", err)
	}
	if appointment == nil {
		return notFound("appointment")
	}
	if !appointment.IsActive() {
		return invalidState(cancelRejection(appointment.Status))
	}

	now := u.now().UTC()
	affected, err := u.appointmentRepo.Cancel(tx, appointmentID, now)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %d: %+v", appointmentID, err)
		return fmt.Errorf("cancel appointment: %w", err)
	}
	if affected == 0 {
		// lost a race, report what the winner left behind
		current, err := u.appointmentRepo.FindByID(tx, appointmentID)
		if err != nil {
			return fmt.Errorf("find appointment: %w", err)
		}
		if current == nil {
			return notFound("appointment")
		}
		return invalidState(cancelRejection(current.Status))
	}

	oldStatus := appointment.Status
	if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionAppointmentCancel, "appointment", appointmentID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": entity.AppointmentStatusCancelled, "cancelled_at": now},
	); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit cancellation of appointment %d: %+v", appointmentID, err)
		return fmt.Errorf("commit cancellation: %w", err)
	}

	u.invalidateSlots(ctx, appointment.DoctorID, appointment.StartAt, appointment.EndAt())

	u.log.Infof("Appointment cancelled: id=%d, doctor=%d", appointmentID, appointment.DoctorID)
	return nil
}

// GetPatientAppointments returns a patient's appointments, newest first
func (u *appointmentUsecase) GetPatientAppointments(ctx context.Context, patientID uint) (*dto.AppointmentListResponse, error) {
	db := u.db.WithContext(ctx)

	patient, err := u.patientRepo.FindByID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %d: %+v", patientID, err)
		return nil, fmt.Errorf("find patient: %w", err)
	}
	if patient == nil {
		return nil, notFound("patient")
	}

	appointments, err := u.appointmentRepo.FindByPatientID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %d: %+v", patientID, err)
		return nil, fmt.Errorf("find appointments: %w", err)
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// GetDoctorSchedule lists every appointment of a doctor between two dates, both inclusive.
// Without dates it covers today through seven days from now.
func (u *appointmentUsecase) GetDoctorSchedule(ctx context.Context, req *dto.DoctorScheduleRequest) (*dto.DoctorScheduleResponse, error) {
	today := entity.StartOfDayUTC(u.now())

	from := today
	if req.From != nil {
		from = entity.StartOfDayUTC(*req.From)
	}
	to := today.AddDate(0, 0, 7)
	if req.To != nil {
		to = entity.StartOfDayUTC(*req.To)
	}
	if to.Before(from) {
		return nil, validationError("end_date must not be before start_date")
	}

	db := u.db.WithContext(ctx)

	doctor, err := u.doctorRepo.FindByID(db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	if doctor == nil {
		return nil, notFound("doctor")
	}

	appointments, err := u.appointmentRepo.FindByDoctorBetween(db, req.DoctorID, from, to.AddDate(0, 0, 1))
	if err != nil {
		u.log.Warnf("Failed to find schedule of doctor %d: %+v", req.DoctorID, err)
		return nil, fmt.Errorf("find appointments: %w", err)
	}

	return &dto.DoctorScheduleResponse{
		DoctorID:     req.DoctorID,
		From:         from.Format(time.DateOnly),
		To:           to.Format(time.DateOnly),
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) noShowHistory(tx *gorm.DB, patientID uint, now time.Time) (service.NoShowHistory, error) {
	past, err := u.appointmentRepo.CountNoShowsByPatient(tx, patientID, nil)
	if err != nil {
		u.log.Warnf("Failed to count no-shows of patient %d: %+v", patientID, err)
		return service.NoShowHistory{}, fmt.Errorf("count no-shows: %w", err)
	}

	since := now.Add(-service.RecentNoShowWindow)
	recent, err := u.appointmentRepo.CountNoShowsByPatient(tx, patientID, &since)
	if err != nil {
		u.log.Warnf("Failed to count recent no-shows of patient %d: %+v", patientID, err)
		return service.NoShowHistory{}, fmt.Errorf("count recent no-shows: %w", err)
	}

	return service.NoShowHistory{PastNoShows: past, RecentNoShows: recent}, nil
}

// scoreNoShow never fails: a predictor error, panic or out of range score yields the default probability
func (u *appointmentUsecase) scoreNoShow(features service.FeatureVector) (probability float64) {
	probability = u.defaultProbability
	if u.predictor == nil {
		return probability
	}

	defer func() {
		if r := recover(); r != nil {
			u.log.Warnf("No-show predictor panicked, using default %.4f: %v", u.defaultProbability, r)
			probability = u.defaultProbability
		}
	}()

	score, err := u.predictor.Score(features)
	if err != nil {
		u.log.Warnf("Failed to score no-show risk, using default %.4f: %+v", u.defaultProbability, err)
		return u.defaultProbability
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		u.log.Warnf("No-show predictor returned %v outside [0,1], using default %.4f", score, u.defaultProbability)
		return u.defaultProbability
	}
	return score
}

func (u *appointmentUsecase) invalidateSlots(ctx context.Context, doctorID uint, start, end time.Time) {
	days := []time.Time{entity.StartOfDayUTC(start)}
	// an appointment reaching past midnight also changes the next day's slots
	if endDay := entity.StartOfDayUTC(end.Add(-time.Nanosecond)); endDay.After(days[0]) {
		days = append(days, endDay)
	}
	for _, day := range days {
		if err := u.slotCache.InvalidateDay(ctx, doctorID, day); err != nil {
			u.log.Warnf("Failed to invalidate slot cache for doctor %d (non-fatal): %+v", doctorID, err)
		}
	}
}

func (u *appointmentUsecase) horizonDays() int {
	if u.cfg.HorizonDays > 0 {
		return u.cfg.HorizonDays
	}
	return config.DefaultSchedulingConfig().HorizonDays
}

func (u *appointmentUsecase) strideMinutes() int {
	if u.cfg.SlotStrideMinutes > 0 {
		return u.cfg.SlotStrideMinutes
	}
	return service.DefaultSlotStrideMinutes
}

func (u *appointmentUsecase) defaultConsultationMinutes() int {
	if u.cfg.DefaultConsultationMinutes > 0 {
		return u.cfg.DefaultConsultationMinutes
	}
	return entity.DefaultConsultationMinutes
}

func containedInAny(windows []entity.TimeWindow, start, end time.Time) bool {
	for _, window := range windows {
		if window.Contains(start, end) {
			return true
		}
	}
	return false
}

func slotTaken() *AppError {
	return &AppError{Kind: KindSlotTaken, Message: "the requested slot is already booked"}
}

func cancelRejection(status entity.AppointmentStatus) string {
	switch status {
	case entity.AppointmentStatusCancelled:
		return "appointment is already cancelled"
	case entity.AppointmentStatusCompleted:
		return "appointment is completed and cannot be cancelled"
	case entity.AppointmentStatusNoShow:
		return "appointment is marked as no-show and cannot be cancelled"
	default:
		return fmt.Sprintf("appointment in status %s cannot be cancelled", status)
	}
}

func actorFromContext(ctx context.Context) string {
	if subject, ok := middleware.GetSubjectFromContext(ctx); ok {
		return subject
	}
	return entity.AuditActorSystem
}
