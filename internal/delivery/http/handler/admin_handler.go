package handler

import (
	"net/http"
	"strconv"

	"doctor-scheduling/internal/usecase"
	"doctor-scheduling/pkg/response"
)

type AdminHandler struct {
	adminUsecase    usecase.AdminUsecase
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase, auditLogUsecase usecase.AuditLogUsecase) *AdminHandler {
	return &AdminHandler{
		adminUsecase:    adminUsecase,
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AdminHandler) GetHighRiskAppointments(w http.ResponseWriter, r *http.Request) {
	var threshold *float64
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "threshold must be a number", nil)
			return
		}
		threshold = &parsed
	}

	result, err := h.adminUsecase.GetHighRiskAppointments(r.Context(), threshold)
	if err != nil {
		writeError(w, err, "Failed to get high risk appointments")
		return
	}

	response.Success(w, http.StatusOK, "High risk appointments retrieved successfully", result)
}

func (h *AdminHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.adminUsecase.GetAnalytics(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get analytics")
		return
	}

	response.Success(w, http.StatusOK, "Analytics retrieved successfully", analytics)
}

func (h *AdminHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	logs, err := h.auditLogUsecase.GetAuditLogs(r.Context(), limit)
	if err != nil {
		writeError(w, err, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", logs)
}
