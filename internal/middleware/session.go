package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"

	// sessionSinkKey carries a *string the logging middleware reads after the
	// handler returns
	sessionSinkKey contextKey = "session_sink"
)

// TokenValidator resolves a session token to its session id
type TokenValidator interface {
	Validate(tokenString string) (string, error)
}

// SessionMiddleware validates session tokens and stores the session id in the
// request context. The token is read from the Authorization header, or from
// the token query parameter for clients that cannot set headers (EventSource).
func SessionMiddleware(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractToken(r)
			if !ok {
				logger.Debug("Missing or malformed session token")
				RespondWithError(w, http.StatusUnauthorized, "missing session token")
				return
			}

			sessionID, err := validator.Validate(tokenString)
			if err != nil {
				logger.Debug("Session validation failed", zap.Error(err))
				if errors.Is(err, service.ErrSessionExpired) {
					RespondWithError(w, http.StatusUnauthorized, "session expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid session token")
				}
				return
			}

			if sink, ok := r.Context().Value(sessionSinkKey).(*string); ok {
				*sink = sessionID
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}

func extractToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		token := r.URL.Query().Get("token")
		return token, token != ""
	}

	// Check for Bearer token format
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetSessionID extracts the session id from request context
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok
}

// WithSessionID returns ctx carrying sessionID
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

func withSessionSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, sessionSinkKey, sink)
}
