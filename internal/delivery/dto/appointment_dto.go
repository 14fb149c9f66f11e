package dto

import "time"

// Request DTOs

type BookAppointmentRequest struct {
	PatientID       uint      `json:"patient_id" validate:"required,min=1"`
	DoctorID        uint      `json:"doctor_id" validate:"required,min=1"`
	HospitalID      uint      `json:"hospital_id" validate:"required,min=1"`
	StartAt         time.Time `json:"appointment_datetime" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"gte=0,lte=1440"`
	Reason          *string   `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type AvailableSlotsRequest struct {
	DoctorID            uint
	Date                time.Time
	ConsultationMinutes int
}

type DoctorScheduleRequest struct {
	DoctorID uint
	From     *time.Time
	To       *time.Time
}

// Response DTOs

type BookAppointmentResponse struct {
	AppointmentID     uint    `json:"appointment_id"`
	NoShowProbability float64 `json:"no_show_probability"`
}

type AppointmentResponse struct {
	ID                uint       `json:"id"`
	PatientID         uint       `json:"patient_id"`
	DoctorID          uint       `json:"doctor_id"`
	HospitalID        uint       `json:"hospital_id"`
	StartAt           time.Time  `json:"appointment_datetime"`
	EndAt             time.Time  `json:"end_datetime"`
	DurationMinutes   int        `json:"duration_minutes"`
	Status            string     `json:"status"`
	NoShowProbability float64    `json:"no_show_probability"`
	Reason            *string    `json:"reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type AvailableSlotsResponse struct {
	DoctorID            uint        `json:"doctor_id"`
	Date                string      `json:"date"`
	ConsultationMinutes int         `json:"consultation_minutes"`
	Slots               []time.Time `json:"slots"`
	Total               int         `json:"total"`
}

type DoctorScheduleResponse struct {
	DoctorID     uint                  `json:"doctor_id"`
	From         string                `json:"start_date"`
	To           string                `json:"end_date"`
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
