package converter

import (
	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:                appointment.ID,
		PatientID:         appointment.PatientID,
		DoctorID:          appointment.DoctorID,
		HospitalID:        appointment.HospitalID,
		StartAt:           appointment.StartAt.UTC(),
		EndAt:             appointment.EndAt().UTC(),
		DurationMinutes:   appointment.DurationMinutes,
		Status:            string(appointment.Status),
		NoShowProbability: appointment.NoShowProbability,
		Reason:            appointment.Reason,
		CreatedAt:         appointment.CreatedAt,
		UpdatedAt:         appointment.UpdatedAt,
		CancelledAt:       appointment.CancelledAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, *AppointmentToResponse(&appointments[i]))
	}
	return responses
}
