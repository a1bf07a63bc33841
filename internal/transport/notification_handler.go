package transport

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateNotificationRequest represents a notification to enqueue.
// Duration is in milliseconds; zero uses the default.
type CreateNotificationRequest struct {
	Type     string `json:"type" validate:"required,oneof=success error info warning"`
	Title    string `json:"title" validate:"required"`
	Message  string `json:"message"`
	Duration int    `json:"duration" validate:"gte=0"`
}

// CreateNotificationResponse carries the assigned id
type CreateNotificationResponse struct {
	ID string `json:"id"`
}

// NotificationHandler handles HTTP requests for the notification queue
type NotificationHandler struct {
	sessions service.SessionService
	logger   *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(sessions service.SessionService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers all notification routes
func (h *NotificationHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Delete("/", h.Clear)
		r.Delete("/{id}", h.Remove)
	})
}

// List returns queued notifications in insertion order
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stores.Notifications.Snapshot())
}

// Create enqueues a notification
func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	id := stores.Notifications.AddNotification(domain.Notification{
		Type:     domain.NotificationType(req.Type),
		Title:    req.Title,
		Message:  req.Message,
		Duration: req.Duration,
	})

	middleware.RespondWithJSON(w, http.StatusCreated, CreateNotificationResponse{ID: id})
}

// Remove dismisses one notification. Unknown ids are ignored.
func (h *NotificationHandler) Remove(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	stores.Notifications.RemoveNotification(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// Clear dismisses every notification
func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	stores.Notifications.ClearNotifications()
	w.WriteHeader(http.StatusNoContent)
}
