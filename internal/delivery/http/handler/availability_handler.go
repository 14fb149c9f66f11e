package handler

import (
	"encoding/json"
	"net/http"

	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/usecase"
	"doctor-scheduling/pkg/response"
	"doctor-scheduling/pkg/validator"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *AvailabilityHandler) GetDoctorAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUint(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	availability, err := h.availabilityUsecase.GetDoctorAvailability(r.Context(), doctorID)
	if err != nil {
		writeError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}

func (h *AvailabilityHandler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUint(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	var req dto.CreateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	req.DoctorID = doctorID

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.availabilityUsecase.CreateAvailability(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create availability")
		return
	}

	response.Success(w, http.StatusCreated, "Availability created successfully", availability)
}

func (h *AvailabilityHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUint(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}
	availabilityID, ok := pathUint(r, "availabilityId")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid availability ID", nil)
		return
	}

	var req dto.UpdateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.availabilityUsecase.UpdateAvailability(r.Context(), doctorID, availabilityID, &req)
	if err != nil {
		writeError(w, err, "Failed to update availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability updated successfully", availability)
}
