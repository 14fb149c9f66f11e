package dto

import "time"

type DoctorResponse struct {
	ID                   uint      `json:"id"`
	HospitalID           *uint     `json:"hospital_id"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	Specialization       string    `json:"specialization"`
	Phone                string    `json:"phone,omitempty"`
	Email                string    `json:"email"`
	ConsultationDuration int       `json:"consultation_duration"`
	CreatedAt            time.Time `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}

type PatientResponse struct {
	ID          uint    `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	DateOfBirth *string `json:"date_of_birth"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}
