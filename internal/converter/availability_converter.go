package converter

import (
	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/domain/entity"
)

func AvailabilityToResponse(availability *entity.DoctorAvailability) *dto.AvailabilityResponse {
	if availability == nil {
		return nil
	}

	return &dto.AvailabilityResponse{
		ID:          availability.ID,
		DoctorID:    availability.DoctorID,
		DayOfWeek:   availability.DayOfWeek,
		StartTime:   availability.StartTime,
		EndTime:     availability.EndTime,
		IsAvailable: availability.IsAvailable,
		CreatedAt:   availability.CreatedAt,
		UpdatedAt:   availability.UpdatedAt,
	}
}

func AvailabilitiesToResponses(availabilities []entity.DoctorAvailability) []dto.AvailabilityResponse {
	responses := make([]dto.AvailabilityResponse, 0, len(availabilities))
	for i := range availabilities {
		responses = append(responses, *AvailabilityToResponse(&availabilities[i]))
	}
	return responses
}
