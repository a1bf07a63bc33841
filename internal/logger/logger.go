package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every entry as the "service" field
const ServiceName = "storefront"

// New builds the process logger. Production writes JSON at info, anything
// else writes colored console output at debug. A non-empty level overrides
// either default.
func New(env string, level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}

	// Containers collect stdout
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.InitialFields = map[string]interface{}{"service": ServiceName}

	built, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return built, nil
}

// NewWithDefaults creates a logger from SERVER_ENV and LOG_LEVEL, falling
// back to a plain production logger when they do not parse
func NewWithDefaults() *zap.Logger {
	env := os.Getenv("SERVER_ENV")
	if env == "" {
		env = "development"
	}

	if l, err := New(env, os.Getenv("LOG_LEVEL")); err == nil {
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

// ForSession returns a child logger tagged with the session id
func ForSession(logger *zap.Logger, sessionID string) *zap.Logger {
	return logger.With(zap.String("session_id", sessionID))
}
