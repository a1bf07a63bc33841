package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// quietPaths are polled by infrastructure and only logged at debug level
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// LoggingMiddleware logs one entry per request once the response is written.
// Server errors log at error level, client errors at warn.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// The session id is attached further down the chain, so it is
			// read back from the request the handler saw.
			var sessionID string
			next.ServeHTTP(ww, r.WithContext(withSessionSink(r.Context(), &sessionID)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				fields = append(fields, zap.String("route", rctx.RoutePattern()))
			}
			if sessionID != "" {
				fields = append(fields, zap.String("session_id", sessionID))
			}

			level := zapcore.InfoLevel
			switch {
			case status >= http.StatusInternalServerError:
				level = zapcore.ErrorLevel
			case status >= http.StatusBadRequest:
				level = zapcore.WarnLevel
			case quietPaths[r.URL.Path]:
				level = zapcore.DebugLevel
			}

			if ce := logger.Check(level, "Request completed"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}
