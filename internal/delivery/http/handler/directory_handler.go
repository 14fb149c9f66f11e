package handler

import (
	"net/http"

	"doctor-scheduling/internal/usecase"
	"doctor-scheduling/pkg/response"
)

type DirectoryHandler struct {
	directoryUsecase usecase.DirectoryUsecase
}

func NewDirectoryHandler(directoryUsecase usecase.DirectoryUsecase) *DirectoryHandler {
	return &DirectoryHandler{directoryUsecase: directoryUsecase}
}

func (h *DirectoryHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUint(r, "id")
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	doctor, err := h.directoryUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		writeError(w, err, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

func (h *DirectoryHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.directoryUsecase.ListDoctors(r.Context())
	if err != nil {
		writeError(w, err, "Failed to list doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DirectoryHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.directoryUsecase.ListPatients(r.Context())
	if err != nil {
		writeError(w, err, "Failed to list patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}
