package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/logger"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultHeartbeatInterval keeps idle event streams open through proxies
const DefaultHeartbeatInterval = 30 * time.Second

// EventsHandler streams session state to remote subscribers as server-sent events
type EventsHandler struct {
	sessions  service.SessionService
	logger    *zap.Logger
	heartbeat time.Duration
}

// NewEventsHandler creates a new EventsHandler
func NewEventsHandler(sessions service.SessionService, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		sessions:  sessions,
		logger:    logger,
		heartbeat: DefaultHeartbeatInterval,
	}
}

// RegisterRoutes registers the event stream route
func (h *EventsHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.With(sessionMiddleware).Get("/api/events", h.Stream)
}

// Stream writes the full session state once on connect and again after
// store changes. Changes that arrive while a frame is pending are folded
// into the next frame. The stream ends when the session is evicted so the
// client reconnects to its new stores.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.RespondWithError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	stores, ok := sessionStores(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	sessionID, _ := middleware.GetSessionID(r.Context())
	log := logger.ForSession(h.logger, sessionID)

	changed := make(chan struct{}, 1)
	unsubscribe := stores.Subscribe(func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeStateFrame(w, stores.Snapshot()); err != nil {
		log.Debug("Event stream closed", zap.Error(err))
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug("Event stream disconnected")
			return
		case <-stores.Done():
			log.Debug("Event stream ended by session eviction")
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-changed:
			if err := writeStateFrame(w, stores.Snapshot()); err != nil {
				log.Debug("Event stream closed", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeStateFrame(w http.ResponseWriter, state interface{}) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
