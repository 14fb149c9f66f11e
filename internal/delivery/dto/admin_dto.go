package dto

type AnalyticsResponse struct {
	TotalPatients                 int64            `json:"total_patients"`
	TotalDoctors                  int64            `json:"total_doctors"`
	TotalAppointments             int64            `json:"total_appointments"`
	AppointmentsByStatus          map[string]int64 `json:"appointments_by_status"`
	NoShowRate                    float64          `json:"no_show_rate"`
	AvgPredictedNoShowProbability float64          `json:"avg_predicted_no_show_probability"`
}

type HighRiskAppointmentsResponse struct {
	Threshold    float64               `json:"threshold"`
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
