package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"doctor-scheduling/internal/delivery/dto"
	"doctor-scheduling/internal/usecase"
	"doctor-scheduling/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAppointmentUsecase struct {
	slotsReq *dto.AvailableSlotsRequest
	bookReq  *dto.BookAppointmentRequest
	err      error
}

func (s *stubAppointmentUsecase) FindAvailableSlots(_ context.Context, req *dto.AvailableSlotsRequest) (*dto.AvailableSlotsResponse, error) {
	s.slotsReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AvailableSlotsResponse{DoctorID: req.DoctorID, Slots: []time.Time{}}, nil
}

func (s *stubAppointmentUsecase) BookAppointment(_ context.Context, req *dto.BookAppointmentRequest) (*dto.BookAppointmentResponse, error) {
	s.bookReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BookAppointmentResponse{AppointmentID: 42, NoShowProbability: 0.25}, nil
}

func (s *stubAppointmentUsecase) CancelAppointment(context.Context, uint) error {
	return s.err
}

func (s *stubAppointmentUsecase) GetPatientAppointments(context.Context, uint) (*dto.AppointmentListResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentListResponse{Appointments: []dto.AppointmentResponse{}}, nil
}

func (s *stubAppointmentUsecase) GetDoctorSchedule(_ context.Context, req *dto.DoctorScheduleRequest) (*dto.DoctorScheduleResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.DoctorScheduleResponse{DoctorID: req.DoctorID}, nil
}

type stubAvailabilityUsecase struct {
	createReq *dto.CreateAvailabilityRequest
}

func (s *stubAvailabilityUsecase) GetDoctorAvailability(context.Context, uint) (*dto.AvailabilityListResponse, error) {
	return &dto.AvailabilityListResponse{}, nil
}

func (s *stubAvailabilityUsecase) CreateAvailability(_ context.Context, req *dto.CreateAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	s.createReq = req
	return &dto.AvailabilityResponse{ID: 7, DoctorID: req.DoctorID}, nil
}

func (s *stubAvailabilityUsecase) UpdateAvailability(_ context.Context, doctorID, availabilityID uint, _ *dto.UpdateAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	return &dto.AvailabilityResponse{ID: availabilityID, DoctorID: doctorID}, nil
}

type stubAdminUsecase struct {
	threshold *float64
}

func (s *stubAdminUsecase) GetHighRiskAppointments(_ context.Context, threshold *float64) (*dto.HighRiskAppointmentsResponse, error) {
	s.threshold = threshold
	return &dto.HighRiskAppointmentsResponse{}, nil
}

func (s *stubAdminUsecase) GetAnalytics(context.Context) (*dto.AnalyticsResponse, error) {
	return &dto.AnalyticsResponse{}, nil
}

type stubAuditLogUsecase struct {
	limit int
}

func (s *stubAuditLogUsecase) GetAuditLogs(_ context.Context, limit int) (*dto.AuditLogListResponse, error) {
	s.limit = limit
	return &dto.AuditLogListResponse{}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func serve(t *testing.T, router *mux.Router, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func appointmentRouter(uc usecase.AppointmentUsecase) *mux.Router {
	h := NewAppointmentHandler(uc, validator.NewValidator(), 30)
	r := mux.NewRouter()
	r.HandleFunc("/doctors/{id}/slots", h.GetAvailableSlots).Methods(http.MethodGet)
	r.HandleFunc("/doctors/{id}/schedule", h.GetDoctorSchedule).Methods(http.MethodGet)
	r.HandleFunc("/appointments", h.BookAppointment).Methods(http.MethodPost)
	r.HandleFunc("/appointments/{id}/cancel", h.CancelAppointment).Methods(http.MethodPut)
	r.HandleFunc("/patients/{id}/appointments", h.GetPatientAppointments).Methods(http.MethodGet)
	return r
}

func TestErrorKindsMapToStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{&usecase.AppError{Kind: usecase.KindNotFound, Entity: "appointment", Message: "appointment not found"}, http.StatusNotFound, "not_found"},
		{usecase.ErrValidation, http.StatusBadRequest, "validation"},
		{usecase.ErrPastBooking, http.StatusBadRequest, "past_booking"},
		{usecase.ErrHorizon, http.StatusBadRequest, "horizon"},
		{usecase.ErrOutsideAvailability, http.StatusUnprocessableEntity, "outside_availability"},
		{usecase.ErrSlotTaken, http.StatusConflict, "slot_taken"},
		{&usecase.AppError{Kind: usecase.KindInvalidState, Message: "appointment is already cancelled"}, http.StatusConflict, "invalid_state"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			router := appointmentRouter(&stubAppointmentUsecase{err: tt.err})

			rec, env := serve(t, router, http.MethodPut, "/appointments/1/cancel", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.err.Error(), env.Message)
			assert.JSONEq(t, `{"kind":"`+tt.kind+`"}`, string(env.Error))
		})
	}
}

func TestUnexpectedErrorIsInternal(t *testing.T) {
	router := appointmentRouter(&stubAppointmentUsecase{err: errors.New("connection reset by peer")})

	rec, env := serve(t, router, http.MethodPut, "/appointments/1/cancel", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to cancel appointment", env.Message)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestBookAppointment(t *testing.T) {
	stub := &stubAppointmentUsecase{}
	router := appointmentRouter(stub)

	rec, env := serve(t, router, http.MethodPost, "/appointments", `{
		"patient_id": 11,
		"doctor_id": 1,
		"hospital_id": 1,
		"appointment_datetime": "2026-03-16T11:00:00Z",
		"duration_minutes": 30
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"appointment_id":42,"no_show_probability":0.25}`, string(env.Data))

	require.NotNil(t, stub.bookReq)
	assert.Equal(t, uint(11), stub.bookReq.PatientID)
	assert.True(t, stub.bookReq.StartAt.Equal(time.Date(2026, 3, 16, 11, 0, 0, 0, time.UTC)))
}

func TestBookAppointmentRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"patient_id":`},
		{"missing datetime", `{"patient_id": 11, "doctor_id": 1, "hospital_id": 1}`},
		{"missing patient", `{"doctor_id": 1, "hospital_id": 1, "appointment_datetime": "2026-03-16T11:00:00Z"}`},
		{"negative duration", `{"patient_id": 11, "doctor_id": 1, "hospital_id": 1, "appointment_datetime": "2026-03-16T11:00:00Z", "duration_minutes": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAppointmentUsecase{}
			rec, env := serve(t, appointmentRouter(stub), http.MethodPost, "/appointments", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Nil(t, stub.bookReq, "usecase must not be reached")
		})
	}
}

func TestGetAvailableSlotsParameters(t *testing.T) {
	stub := &stubAppointmentUsecase{}
	router := appointmentRouter(stub)

	rec, _ := serve(t, router, http.MethodGet, "/doctors/1/slots?date=2026-03-16", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.slotsReq)
	assert.Equal(t, uint(1), stub.slotsReq.DoctorID)
	assert.Equal(t, 30, stub.slotsReq.ConsultationMinutes, "duration defaults to the configured consultation length")
	assert.True(t, stub.slotsReq.Date.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)))

	rec, _ = serve(t, router, http.MethodGet, "/doctors/1/slots?date=2026-03-16&duration=45", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 45, stub.slotsReq.ConsultationMinutes)

	for _, target := range []string{
		"/doctors/1/slots",
		"/doctors/1/slots?date=16-03-2026",
		"/doctors/1/slots?date=2026-03-16&duration=long",
		"/doctors/abc/slots?date=2026-03-16",
		"/doctors/0/slots?date=2026-03-16",
	} {
		rec, _ := serve(t, router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGetDoctorScheduleRejectsBadDates(t *testing.T) {
	router := appointmentRouter(&stubAppointmentUsecase{})

	rec, _ := serve(t, router, http.MethodGet, "/doctors/1/schedule", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(t, router, http.MethodGet, "/doctors/1/schedule?start_date=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, router, http.MethodGet, "/doctors/1/schedule?end_date=2026/03/16", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAvailability(t *testing.T) {
	stub := &stubAvailabilityUsecase{}
	h := NewAvailabilityHandler(stub, validator.NewValidator())
	router := mux.NewRouter()
	router.HandleFunc("/doctors/{id}/availability", h.CreateAvailability).Methods(http.MethodPost)
	router.HandleFunc("/doctors/{id}/availability/{availabilityId}", h.UpdateAvailability).Methods(http.MethodPut)

	rec, env := serve(t, router, http.MethodPost, "/doctors/3/availability", `{"day_of_week": 0, "start_time": "09:00", "end_time": "17:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.createReq)
	assert.Equal(t, uint(3), stub.createReq.DoctorID)
	require.NotNil(t, stub.createReq.DayOfWeek)
	assert.Equal(t, 0, *stub.createReq.DayOfWeek, "monday is a valid zero value")
	assert.True(t, env.Success)

	stub.createReq = nil
	rec, env = serve(t, router, http.MethodPost, "/doctors/3/availability", `{"day_of_week": 8, "start_time": "9am", "end_time": "17:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, string(env.Error), `"start_time"`)
	assert.Contains(t, string(env.Error), `"day_of_week"`)
	assert.Nil(t, stub.createReq)

	rec, _ = serve(t, router, http.MethodPut, "/doctors/3/availability/9", `{"is_available": false}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(t, router, http.MethodPut, "/doctors/3/availability/9", `{"end_time": "25:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminQueryParameters(t *testing.T) {
	admin := &stubAdminUsecase{}
	audit := &stubAuditLogUsecase{}
	h := NewAdminHandler(admin, audit)
	router := mux.NewRouter()
	router.HandleFunc("/high-risk", h.GetHighRiskAppointments).Methods(http.MethodGet)
	router.HandleFunc("/analytics", h.GetAnalytics).Methods(http.MethodGet)
	router.HandleFunc("/audit-logs", h.GetAuditLogs).Methods(http.MethodGet)

	rec, _ := serve(t, router, http.MethodGet, "/high-risk", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, admin.threshold)

	rec, _ = serve(t, router, http.MethodGet, "/high-risk?threshold=0.7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, admin.threshold)
	assert.Equal(t, 0.7, *admin.threshold)

	rec, _ = serve(t, router, http.MethodGet, "/high-risk?threshold=high", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(t, router, http.MethodGet, "/analytics", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(t, router, http.MethodGet, "/audit-logs?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, audit.limit)

	rec, _ = serve(t, router, http.MethodGet, "/audit-logs?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubDirectoryUsecase struct {
	err error
}

func (s *stubDirectoryUsecase) GetDoctor(_ context.Context, doctorID uint) (*dto.DoctorResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.DoctorResponse{ID: doctorID, FirstName: "Ada"}, nil
}

func (s *stubDirectoryUsecase) ListDoctors(context.Context) (*dto.DoctorListResponse, error) {
	return &dto.DoctorListResponse{Doctors: []dto.DoctorResponse{{ID: 1}, {ID: 2}}, Total: 2}, nil
}

func (s *stubDirectoryUsecase) ListPatients(context.Context) (*dto.PatientListResponse, error) {
	return &dto.PatientListResponse{Patients: []dto.PatientResponse{}}, nil
}

func TestDirectoryHandler(t *testing.T) {
	uc := &stubDirectoryUsecase{}
	h := NewDirectoryHandler(uc)
	r := mux.NewRouter()
	r.HandleFunc("/doctors/{id}", h.GetDoctor).Methods(http.MethodGet)
	r.HandleFunc("/admin/doctors", h.ListDoctors).Methods(http.MethodGet)
	r.HandleFunc("/admin/patients", h.ListPatients).Methods(http.MethodGet)

	rec, env := serve(t, r, http.MethodGet, "/doctors/3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var doctor dto.DoctorResponse
	require.NoError(t, json.Unmarshal(env.Data, &doctor))
	assert.Equal(t, uint(3), doctor.ID)

	rec, _ = serve(t, r, http.MethodGet, "/doctors/0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = serve(t, r, http.MethodGet, "/admin/doctors", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var doctors dto.DoctorListResponse
	require.NoError(t, json.Unmarshal(env.Data, &doctors))
	assert.Equal(t, 2, doctors.Total)

	rec, _ = serve(t, r, http.MethodGet, "/admin/patients", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	uc.err = &usecase.AppError{Kind: usecase.KindNotFound, Entity: "doctor", Message: "doctor not found"}
	rec, env = serve(t, r, http.MethodGet, "/doctors/3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "doctor not found", env.Message)
}
