package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/usecase"
	"doctor-scheduling/pkg/response"
	"doctor-scheduling/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
	defaultDuration    int
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator, defaultDuration int) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
		defaultDuration:    defaultDuration,
	}
}

func (h *AppointmentHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUint(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	date, ok := queryDate(r, "date")
	if !ok || date == nil {
		response.Error(w, http.StatusBadRequest, "date query parameter is required in YYYY-MM-DD format", nil)
		return
	}

	duration := h.defaultDuration
	if raw := r.URL.Query().Get("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "duration must be an integer number of minutes", nil)
			return
		}
		duration = parsed
	}

	slots, err := h.appointmentUsecase.FindAvailableSlots(r.Context(), &dto.AvailableSlotsRequest{
		DoctorID:            doctorID,
		Date:                *date,
		ConsultationMinutes: duration,
	})
	if err != nil {
		writeError(w, err, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}

func (h *AppointmentHandler) GetDoctorSchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUint(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	from, ok := queryDate(r, "start_date")
	if !ok {
		response.Error(w, http.StatusBadRequest, "start_date must be in YYYY-MM-DD format", nil)
		return
	}
	to, ok := queryDate(r, "end_date")
	if !ok {
		response.Error(w, http.StatusBadRequest, "end_date must be in YYYY-MM-DD format", nil)
		return
	}

	schedule, err := h.appointmentUsecase.GetDoctorSchedule(r.Context(), &dto.DoctorScheduleRequest{
		DoctorID: doctorID,
		From:     from,
		To:       to,
	})
	if err != nil {
		writeError(w, err, "Failed to get doctor schedule")
		return
	}

	response.Success(w, http.StatusOK, "Doctor schedule retrieved successfully", schedule)
}

func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.appointmentUsecase.BookAppointment(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to book appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", result)
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUint(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	if err := h.appointmentUsecase.CancelAppointment(r.Context(), appointmentID); err != nil {
		writeError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}

func (h *AppointmentHandler) GetPatientAppointments(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathUint(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	appointments, err := h.appointmentUsecase.GetPatientAppointments(r.Context(), patientID)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}
