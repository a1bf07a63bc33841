package transport

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/store"

	"go.uber.org/zap"
)

// decodeRequest decodes and validates the body into v, writing the error
// response itself when it fails
func decodeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)

		// Check if it's a validation error
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		// JSON decode error
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// sessionStores resolves the stores of the session in the request context
func sessionStores(w http.ResponseWriter, r *http.Request, sessions service.SessionService, logger *zap.Logger) (*store.Stores, bool) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		logger.Error("Session ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	stores, err := sessions.Stores(r.Context(), sessionID)
	if err != nil {
		logger.Error("Failed to load session stores",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}

	return stores, true
}
