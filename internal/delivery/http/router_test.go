package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doctor-scheduling/config"
	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/delivery/http/handler"
	"doctor-scheduling/internal/delivery/http/middleware"
	"doctor-scheduling/pkg/jwt"
	"doctor-scheduling/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminUsecase struct{}

func (fakeAdminUsecase) GetHighRiskAppointments(_ context.Context, threshold *float64) (*dto.HighRiskAppointmentsResponse, error) {
	return &dto.HighRiskAppointmentsResponse{}, nil
}

func (fakeAdminUsecase) GetAnalytics(context.Context) (*dto.AnalyticsResponse, error) {
	return &dto.AnalyticsResponse{TotalDoctors: 3}, nil
}

type fakeAuditLogUsecase struct{}

func (fakeAuditLogUsecase) GetAuditLogs(context.Context, int) (*dto.AuditLogListResponse, error) {
	return &dto.AuditLogListResponse{}, nil
}

type fakeDirectoryUsecase struct{}

func (fakeDirectoryUsecase) GetDoctor(_ context.Context, doctorID uint) (*dto.DoctorResponse, error) {
	return &dto.DoctorResponse{ID: doctorID}, nil
}

func (fakeDirectoryUsecase) ListDoctors(context.Context) (*dto.DoctorListResponse, error) {
	return &dto.DoctorListResponse{}, nil
}

func (fakeDirectoryUsecase) ListPatients(context.Context) (*dto.PatientListResponse, error) {
	return &dto.PatientListResponse{}, nil
}

func newTestRouter(t *testing.T) (*mux.Router, *jwt.JWTService) {
	t.Helper()
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "router-secret", AccessExpiry: time.Minute})
	v := validator.NewValidator()

	router := NewRouter(
		handler.NewAppointmentHandler(nil, v, 30),
		handler.NewAvailabilityHandler(nil, v),
		handler.NewAdminHandler(fakeAdminUsecase{}, fakeAuditLogUsecase{}),
		handler.NewDirectoryHandler(fakeDirectoryUsecase{}),
		middleware.NewAuthMiddleware(jwtService, nil),
		middleware.NewCORSMiddleware(nil),
	)
	return router.Setup(), jwtService
}

func do(router *mux.Router, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	router, jwtService := newTestRouter(t)

	adminToken, _, err := jwtService.GenerateAccessToken("ops@example.com", jwt.RoleAdmin)
	require.NoError(t, err)
	staffToken, _, err := jwtService.GenerateAccessToken("desk@example.com", jwt.RoleStaff)
	require.NoError(t, err)

	for _, target := range []string{
		"/api/v1/admin/analytics",
		"/api/v1/admin/appointments/high-risk",
		"/api/v1/admin/audit-logs",
		"/api/v1/admin/doctors",
		"/api/v1/admin/patients",
	} {
		assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, target, "").Code, target)
		assert.Equal(t, http.StatusForbidden, do(router, http.MethodGet, target, staffToken).Code, target)
		assert.Equal(t, http.StatusOK, do(router, http.MethodGet, target, adminToken).Code, target)
	}

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodPost, "/api/v1/admin/doctors/1/availability", "").Code)
}

func TestDoctorLookupIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/doctors/4", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":4`)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/v1/doctors/abc", "").Code)
}

func TestPreflight(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{
		"/api/v1/admin/analytics",
		"/api/v1/admin/doctors/1/availability",
		"/api/v1/appointments",
		"/api/v1/doctors/1/slots",
	} {
		rec := do(router, http.MethodOptions, target, "")
		assert.Equal(t, http.StatusNoContent, rec.Code, target)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), target)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization", target)
	}
}

func TestRouteMethods(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodPost, "/api/v1/appointments/1/cancel", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// a mismatch inside the admin subrouter skips authentication
	assert.Equal(t, http.StatusMethodNotAllowed, do(router, http.MethodDelete, "/api/v1/admin/analytics", "").Code)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/v1/unknown", "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodOptions, "/api/v1/unknown", "").Code)
}
