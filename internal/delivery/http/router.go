package http

import (
	"net/http"

	"go-clinic-workflow/internal/delivery/http/handler"
	"go-clinic-workflow/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router              *mux.Router
	log                 *logrus.Logger
	authHandler         *handler.AuthHandler
	consultationHandler *handler.ConsultationHandler
	appointmentHandler  *handler.AppointmentHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	log *logrus.Logger,
	authHandler *handler.AuthHandler,
	consultationHandler *handler.ConsultationHandler,
	appointmentHandler *handler.AppointmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		log:                 log,
		authHandler:         authHandler,
		consultationHandler: consultationHandler,
		appointmentHandler:  appointmentHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

// Setup registers every route. CORS and request logging wrap the router
// itself, so preflights are answered before mux matches methods.
func (r *Router) Setup() http.Handler {
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Consultations: a session narrows everything to the calling doctor.
	// Static paths are registered before /{id}.
	consultations := api.PathPrefix("/consultations").Subrouter()
	consultations.Use(r.authMiddleware.OptionalAuthenticate)
	consultations.HandleFunc("", r.consultationHandler.Create).Methods(http.MethodPost)
	consultations.HandleFunc("", r.consultationHandler.ListAll).Methods(http.MethodGet)
	consultations.HandleFunc("/record", r.consultationHandler.Record).Methods(http.MethodPost)
	consultations.HandleFunc("/stats", r.consultationHandler.Stats).Methods(http.MethodGet)
	consultations.HandleFunc("/search", r.consultationHandler.Search).Methods(http.MethodGet)
	consultations.HandleFunc("/filter/{patientId}", r.consultationHandler.Filter).Methods(http.MethodGet)
	consultations.HandleFunc("/patient/{patientId}", r.consultationHandler.ListByPatient).Methods(http.MethodGet)
	consultations.HandleFunc("/appointment/{appointmentId}", r.consultationHandler.GetByAppointment).Methods(http.MethodGet)
	consultations.HandleFunc("/{id}", r.consultationHandler.Get).Methods(http.MethodGet)
	consultations.HandleFunc("/{id}", r.consultationHandler.Update).Methods(http.MethodPatch)
	consultations.HandleFunc("/{id}", r.consultationHandler.Delete).Methods(http.MethodDelete)

	// Appointments (admin or doctor)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Use(middleware.RequireStaff)
	appointments.HandleFunc("", r.appointmentHandler.Create).Methods(http.MethodPost)
	appointments.HandleFunc("/patient/{patientId}", r.appointmentHandler.ListByPatient).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Get).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/status", r.appointmentHandler.UpdateStatus).Methods(http.MethodPatch)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	return middleware.RequestLogger(r.log)(r.corsMiddleware.Handle(r.router))
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
