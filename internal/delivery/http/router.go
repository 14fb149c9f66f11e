package http

import (
	"net/http"

	"doctor-scheduling/internal/delivery/http/handler"
	"doctor-scheduling/internal/delivery/http/middleware"
	"doctor-scheduling/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	appointmentHandler  *handler.AppointmentHandler
	availabilityHandler *handler.AvailabilityHandler
	adminHandler        *handler.AdminHandler
	directoryHandler    *handler.DirectoryHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	appointmentHandler *handler.AppointmentHandler,
	availabilityHandler *handler.AvailabilityHandler,
	adminHandler *handler.AdminHandler,
	directoryHandler *handler.DirectoryHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		appointmentHandler:  appointmentHandler,
		availabilityHandler: availabilityHandler,
		adminHandler:        adminHandler,
		directoryHandler:    directoryHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Doctor routes (public)
	api.HandleFunc("/doctors/{id}", r.directoryHandler.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/slots", r.appointmentHandler.GetAvailableSlots).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/schedule", r.appointmentHandler.GetDoctorSchedule).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/availability", r.availabilityHandler.GetDoctorAvailability).Methods(http.MethodGet)

	// Appointment routes (public)
	api.HandleFunc("/appointments", r.appointmentHandler.BookAppointment).Methods(http.MethodPost)
	api.HandleFunc("/appointments/{id}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPut)
	api.HandleFunc("/patients/{id}/appointments", r.appointmentHandler.GetPatientAppointments).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	// Availability management (admin)
	admin.HandleFunc("/doctors/{id}/availability", r.availabilityHandler.CreateAvailability).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}/availability/{availabilityId}", r.availabilityHandler.UpdateAvailability).Methods(http.MethodPut)

	// Reporting (admin)
	admin.HandleFunc("/appointments/high-risk", r.adminHandler.GetHighRiskAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/analytics", r.adminHandler.GetAnalytics).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.adminHandler.GetAuditLogs).Methods(http.MethodGet)

	// Directory (admin)
	admin.HandleFunc("/doctors", r.directoryHandler.ListDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/patients", r.directoryHandler.ListPatients).Methods(http.MethodGet)

	// Add CORS middleware. Preflight requests never match a route method, so they
	// reach the CORS handler through the method-not-allowed path. A subrouter reports
	// a method mismatch on its own, so each one carries the handler.
	r.router.Use(r.corsMiddleware.Handle)
	notAllowed := r.corsMiddleware.Handle(http.HandlerFunc(methodNotAllowed))
	for _, router := range []*mux.Router{r.router, api, admin} {
		router.MethodNotAllowedHandler = notAllowed
	}

	return r.router
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
