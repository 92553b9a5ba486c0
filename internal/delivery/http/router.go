package http

import (
	"net/http"

	"clinic-workflow/internal/delivery/http/handler"
	"clinic-workflow/internal/delivery/http/middleware"
	"clinic-workflow/internal/domain/entity"
	"clinic-workflow/pkg/response"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth            *handler.AuthHandler
	ServiceRequest  *handler.ServiceRequestHandler
	Queue           *handler.QueueHandler
	Notification    *handler.NotificationHandler
	ChangeLog       *handler.ChangeLogHandler
	DeletionRequest *handler.DeletionRequestHandler
	ServicePrice    *handler.ServicePriceHandler
	AuditLog        *handler.AuditLogHandler
}

type Router struct {
	router         *mux.Router
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	corsMiddleware *middleware.CORSMiddleware
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:         mux.NewRouter(),
		handlers:       handlers,
		authMiddleware: authMiddleware,
		corsMiddleware: corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	h := r.handlers
	frontDesk := func(f http.HandlerFunc) http.Handler {
		return middleware.RequireFrontDesk(f)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public catalog
	api.HandleFunc("/service-prices", h.ServicePrice.List).Methods(http.MethodGet)

	// Everything below requires a bearer token
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/auth/me", h.Auth.GetCurrentUser).Methods(http.MethodGet)
	protected.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)

	// Service requests. Role rules beyond authentication are enforced per
	// transition, since they depend on the request's service type.
	requests := protected.PathPrefix("/service-requests").Subrouter()
	requests.Handle("", middleware.RequireRole(entity.RolePatient, entity.RoleSecretary, entity.RoleAdmin)(http.HandlerFunc(h.ServiceRequest.Create))).Methods(http.MethodPost)
	requests.HandleFunc("/mine", h.ServiceRequest.ListMine).Methods(http.MethodGet)
	requests.HandleFunc("/{id:[0-9]+}", h.ServiceRequest.GetByID).Methods(http.MethodGet)
	requests.HandleFunc("/{id:[0-9]+}/confirm", h.ServiceRequest.Confirm).Methods(http.MethodPost)
	requests.HandleFunc("/{id:[0-9]+}/confirm-payment", h.ServiceRequest.ConfirmPayment).Methods(http.MethodPost)
	requests.HandleFunc("/{id:[0-9]+}/start", h.ServiceRequest.StartWork).Methods(http.MethodPost)
	requests.HandleFunc("/{id:[0-9]+}/complete", h.ServiceRequest.Complete).Methods(http.MethodPost)
	requests.HandleFunc("/{id:[0-9]+}/cancel", h.ServiceRequest.Cancel).Methods(http.MethodPost)
	requests.HandleFunc("/{id:[0-9]+}/payment", h.ServiceRequest.RecordPayment).Methods(http.MethodPatch)

	// Department queues
	protected.HandleFunc("/queues/{serviceType}", h.Queue.DepartmentQueue).Methods(http.MethodGet)

	// Notifications
	notifications := protected.PathPrefix("/notifications").Subrouter()
	notifications.HandleFunc("", h.Notification.List).Methods(http.MethodGet)
	notifications.HandleFunc("/unread-count", h.Notification.UnreadCount).Methods(http.MethodGet)
	notifications.HandleFunc("/read-all", h.Notification.MarkAllRead).Methods(http.MethodPost)
	notifications.HandleFunc("/stream", h.Notification.Stream).Methods(http.MethodGet)
	notifications.HandleFunc("/send", h.Notification.Send).Methods(http.MethodPost)
	notifications.HandleFunc("/{id}/read", h.Notification.MarkRead).Methods(http.MethodPost)
	notifications.HandleFunc("/{id}", h.Notification.Delete).Methods(http.MethodDelete)

	// Appointment change log
	protected.HandleFunc("/appointment-changes", h.ChangeLog.Record).Methods(http.MethodPost)
	protected.Handle("/appointment-changes", frontDesk(h.ChangeLog.List)).Methods(http.MethodGet)
	protected.Handle("/management/service-requests", frontDesk(h.Queue.ManagementView)).Methods(http.MethodGet)

	// Account deletion
	protected.HandleFunc("/deletion-requests", h.DeletionRequest.Create).Methods(http.MethodPost)

	// Admin routes
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/service-prices", h.ServicePrice.Upsert).Methods(http.MethodPut)
	admin.HandleFunc("/appointment-changes/{id:[0-9]+}/acknowledge", h.ChangeLog.Acknowledge).Methods(http.MethodPost)
	admin.HandleFunc("/deletion-requests", h.DeletionRequest.List).Methods(http.MethodGet)
	admin.HandleFunc("/deletion-requests/{id}/review", h.DeletionRequest.Review).Methods(http.MethodPost)
	admin.HandleFunc("/audit-logs", h.AuditLog.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}", h.AuditLog.GetAuditLog).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}
