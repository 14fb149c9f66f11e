package converter

import (
	"time"

	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/domain/entity"
)

func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:                   doctor.ID,
		HospitalID:           doctor.HospitalID,
		FirstName:            doctor.FirstName,
		LastName:             doctor.LastName,
		Specialization:       doctor.Specialization,
		Phone:                doctor.Phone,
		Email:                doctor.Email,
		ConsultationDuration: doctor.ConsultationMinutes(),
		CreatedAt:            doctor.CreatedAt,
	}
}

func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, 0, len(doctors))
	for i := range doctors {
		responses = append(responses, *DoctorToResponse(&doctors[i]))
	}
	return responses
}

// PatientToResponse leaves out medical history
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	var dateOfBirth *string
	if patient.DateOfBirth != nil {
		formatted := patient.DateOfBirth.Format(time.DateOnly)
		dateOfBirth = &formatted
	}

	return &dto.PatientResponse{
		ID:          patient.ID,
		FirstName:   patient.FirstName,
		LastName:    patient.LastName,
		Email:       patient.Email,
		Phone:       patient.Phone,
		DateOfBirth: dateOfBirth,
	}
}

func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		responses = append(responses, *PatientToResponse(&patients[i]))
	}
	return responses
}
