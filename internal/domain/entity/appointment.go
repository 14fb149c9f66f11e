package entity

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// ActiveStatuses are the statuses that occupy a doctor's time.
// Every overlap check and every slot query goes through this list.
var ActiveStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
}

// AllStatuses lists every persisted status value
var AllStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
	AppointmentStatusNoShow,
}

// ParseAppointmentStatus maps a status string to its canonical form, ignoring case
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	normalized := AppointmentStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range AllStatuses {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// IsActive reports whether the status is part of ActiveStatuses
func (s AppointmentStatus) IsActive() bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// Appointment is a booked consultation between a patient and a doctor.
//
// ActiveStartAt mirrors StartAt while the appointment is active and is NULL
// once it reaches a terminal status. The unique index on
// (doctor_id, active_start_at) is what makes a slot un-bookable twice.
type Appointment struct {
	ID                uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID         uint              `gorm:"not null;index" json:"patient_id"`
	DoctorID          uint              `gorm:"not null;index;uniqueIndex:uix_appointments_doctor_active_start,priority:1" json:"doctor_id"`
	HospitalID        uint              `gorm:"not null;index" json:"hospital_id"`
	StartAt           time.Time         `gorm:"not null;index" json:"start_at"`
	DurationMinutes   int               `gorm:"not null;default:30" json:"duration_minutes"`
	Status            AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	NoShowProbability float64           `gorm:"not null;default:0" json:"no_show_probability"`
	Reason            *string           `gorm:"type:text" json:"reason,omitempty"`
	ActiveStartAt     *time.Time        `gorm:"uniqueIndex:uix_appointments_doctor_active_start,priority:2" json:"-"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`

	// Relationships
	Patient  *Patient  `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor   *Doctor   `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// EndAt returns the exclusive end of the appointment interval
func (a *Appointment) EndAt() time.Time {
	return a.StartAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// IsActive checks if the appointment still occupies the doctor's time
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsCompleted checks if appointment is completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// Busy returns the interval the appointment blocks
func (a *Appointment) Busy() BusyInterval {
	return BusyInterval{Start: a.StartAt, End: a.EndAt()}
}
