package transport

import (
	"net/http"

	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionResponse carries a newly issued session
type SessionResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
}

// SessionHandler issues and forgets shopper sessions
type SessionHandler struct {
	sessions service.SessionService
	logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers all session routes
func (h *SessionHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/session", func(r chi.Router) {
		// Public routes
		r.Post("/", h.Create)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Delete("/", h.Delete)
		})
	})
}

// Create issues a new session token
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	token, sessionID, err := h.sessions.Issue(r.Context())
	if err != nil {
		h.logger.Error("Failed to issue session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	logger.ForSession(h.logger, sessionID).Info("Session created")
	middleware.RespondWithJSON(w, http.StatusCreated, SessionResponse{
		Token:     token,
		SessionID: sessionID,
	})
}

// Delete drops the session's live stores and every persisted snapshot
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.sessions.Evict(r.Context(), sessionID, true); err != nil {
		logger.ForSession(h.logger, sessionID).Error("Failed to delete session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	logger.ForSession(h.logger, sessionID).Info("Session deleted")
	w.WriteHeader(http.StatusNoContent)
}
