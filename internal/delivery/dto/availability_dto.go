package dto

import "time"

// Request DTOs

type CreateAvailabilityRequest struct {
	DoctorID    uint   `json:"-"`
	DayOfWeek   *int   `json:"day_of_week" validate:"required,gte=0,lte=6"`
	StartTime   string `json:"start_time" validate:"required,timeofday"`
	EndTime     string `json:"end_time" validate:"required,timeofday"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

type UpdateAvailabilityRequest struct {
	DayOfWeek   *int    `json:"day_of_week,omitempty" validate:"omitempty,gte=0,lte=6"`
	StartTime   *string `json:"start_time,omitempty" validate:"omitempty,timeofday"`
	EndTime     *string `json:"end_time,omitempty" validate:"omitempty,timeofday"`
	IsAvailable *bool   `json:"is_available,omitempty"`
}

// Response DTOs

type AvailabilityResponse struct {
	ID          uint      `json:"id"`
	DoctorID    uint      `json:"doctor_id"`
	DayOfWeek   int       `json:"day_of_week"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AvailabilityListResponse struct {
	Availability []AvailabilityResponse `json:"availability"`
	Total        int                    `json:"total"`
}
