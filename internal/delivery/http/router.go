package http

import (
	"net/http"

	"clinic-booking-api/internal/delivery/http/handler"
	"clinic-booking-api/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	healthHandler      *handler.HealthHandler
	authHandler        *handler.AuthHandler
	appointmentHandler *handler.AppointmentHandler
	doctorHandler      *handler.DoctorHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	metricsMiddleware  *middleware.MetricsMiddleware
	authRateLimiter    *middleware.RateLimiter
	metricsHandler     http.Handler
}

type RouterDeps struct {
	HealthHandler      *handler.HealthHandler
	AuthHandler        *handler.AuthHandler
	AppointmentHandler *handler.AppointmentHandler
	DoctorHandler      *handler.DoctorHandler
	AuditLogHandler    *handler.AuditLogHandler
	AuthMiddleware     *middleware.AuthMiddleware
	CORSMiddleware     *middleware.CORSMiddleware
	MetricsMiddleware  *middleware.MetricsMiddleware
	AuthRateLimiter    *middleware.RateLimiter
	MetricsHandler     http.Handler
}

func NewRouter(deps RouterDeps) *Router {
	return &Router{
		router:             mux.NewRouter(),
		healthHandler:      deps.HealthHandler,
		authHandler:        deps.AuthHandler,
		appointmentHandler: deps.AppointmentHandler,
		doctorHandler:      deps.DoctorHandler,
		auditLogHandler:    deps.AuditLogHandler,
		authMiddleware:     deps.AuthMiddleware,
		corsMiddleware:     deps.CORSMiddleware,
		metricsMiddleware:  deps.MetricsMiddleware,
		authRateLimiter:    deps.AuthRateLimiter,
		metricsHandler:     deps.MetricsHandler,
	}
}

func (r *Router) Setup() *mux.Router {
	r.router.Use(r.metricsMiddleware.Handle)

	r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.healthHandler.Live).Methods(http.MethodGet)
	api.HandleFunc("/health/ready", r.healthHandler.Ready).Methods(http.MethodGet)

	// Auth routes (public, rate limited per IP)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(r.authRateLimiter.Limit)
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/logout-all", r.authHandler.LogoutAll).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Any authenticated caller
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.HandleFunc("/appointments", r.appointmentHandler.GetAllAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", r.appointmentHandler.UpdateAppointment).Methods(http.MethodPut)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/appointments/{id}", r.appointmentHandler.DeleteAppointment).Methods(http.MethodDelete)

	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors", r.doctorHandler.UpdateDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.DeleteDoctor).Methods(http.MethodDelete)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	return r.router
}

// Handler wraps the routes with CORS. Preflight requests never match a
// route, so CORS cannot be a mux middleware.
func (r *Router) Handler() http.Handler {
	return r.corsMiddleware.Handle(r.Setup())
}
