package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// CORSMiddleware allows the storefront frontend to call the API and open the
// event stream. Development allows any origin without credentials.
func CORSMiddleware(allowedOrigins []string, isDevelopment bool) func(http.Handler) http.Handler {
	allowCredentials := true
	if isDevelopment {
		allowedOrigins = []string{"*"}
		// Browsers reject credentialed responses for a wildcard origin
		allowCredentials = false
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Cache-Control", "Last-Event-ID"},
		ExposedHeaders:   []string{"X-Request-Id", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}

// DefaultMiddlewareStack returns the router-wide middleware that precedes
// logging. Only JSON bodies are compressed so the event stream is never buffered.
// Panics are left to ErrorHandlingMiddleware.
func DefaultMiddlewareStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		requestIDHeader,
		middleware.RealIP,
		middleware.CleanPath,
		middleware.Compress(5, "application/json"),
	}
}

// requestIDHeader echoes the request id so clients can quote it
func requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
