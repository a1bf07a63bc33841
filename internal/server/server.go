package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/metrics"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrMissingDatabase = errors.New("postgres store backend requires a database connection")
	ErrMissingRedis    = errors.New("redis store backend requires a redis client")
	ErrUnknownBackend  = errors.New("unknown store backend")
)

// Dependencies are the external resources the server is built on.
// Database and Redis may be nil when the configuration does not use them.
type Dependencies struct {
	Catalog  *catalog.Catalog
	Database database.Service
	Redis    *redis.Client
}

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	deps     Dependencies
	sessions service.SessionService
	metrics  *metrics.Metrics
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	repo, err := snapshotRepository(cfg, deps)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(m.Middleware)

	s := &Server{
		config:  cfg,
		logger:  logger,
		deps:    deps,
		metrics: m,
	}

	router.Get("/health", s.health)
	router.Method(http.MethodGet, "/metrics", m.Handler())

	// Initialize services
	s.sessions = service.NewSessionService(repo, deps.Catalog, service.SessionOptions{
		Secret:               sessionSecret(cfg, logger),
		Expiry:               cfg.Session.Expiry,
		FlushTimeout:         cfg.Store.FlushTimeout,
		NotificationDuration: cfg.Store.NotificationTimeout,
	}, logger, m)

	sessionMiddleware := s.sessionMiddleware()

	// Register routes
	transport.NewSessionHandler(s.sessions, logger).RegisterRoutes(router, sessionMiddleware)
	transport.NewCatalogHandler(deps.Catalog, s.sessions, logger).RegisterRoutes(router, sessionMiddleware)
	transport.NewCartHandler(s.sessions, deps.Catalog, logger).RegisterRoutes(router, sessionMiddleware)
	transport.NewWishlistHandler(s.sessions, deps.Catalog, logger).RegisterRoutes(router, sessionMiddleware)
	transport.NewUserHandler(s.sessions, logger).RegisterRoutes(router, sessionMiddleware)
	transport.NewNotificationHandler(s.sessions, logger).RegisterRoutes(router, sessionMiddleware)
	transport.NewFilterHandler(s.sessions, logger).RegisterRoutes(router, sessionMiddleware)
	transport.NewEventsHandler(s.sessions, logger).RegisterRoutes(router, sessionMiddleware)

	s.Server = &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:     router,
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// No write timeout: /api/events streams for the life of the connection.
	}

	return s, nil
}

// sessionMiddleware validates the session token and, when enabled, applies
// the per-session rate limit
func (s *Server) sessionMiddleware() func(http.Handler) http.Handler {
	auth := custommiddleware.SessionMiddleware(s.sessions, s.logger)

	if !s.config.RateLimit.Enabled {
		return auth
	}
	if s.deps.Redis == nil {
		s.logger.Warn("Rate limiting enabled without a redis client; skipping")
		return auth
	}

	limit := custommiddleware.RateLimitMiddleware(s.deps.Redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: s.config.RateLimit.RequestsPerWindow,
		Window:            s.config.RateLimit.Window,
		KeyPrefix:         s.config.Store.KeyPrefix + ":ratelimit",
	}, s.logger)

	return func(next http.Handler) http.Handler {
		return auth(limit(next))
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]interface{}{
		"status":  "ok",
		"backend": s.config.Store.Backend,
	}

	if s.deps.Database != nil {
		dbHealth := s.deps.Database.Health()
		body["database"] = dbHealth
		if dbHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
	}

	if s.deps.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			body["redis"] = map[string]string{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
		} else {
			body["redis"] = map[string]string{"status": "up"}
		}
	}

	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	custommiddleware.RespondWithJSON(w, status, body)
}

// sessionSecret falls back to a per-process secret in development, so tokens
// do not survive a restart there
func sessionSecret(cfg *config.Config, logger *zap.Logger) string {
	if cfg.Session.Secret != "" {
		return cfg.Session.Secret
	}
	logger.Warn("SESSION_SECRET not set; signing sessions with a temporary secret")
	return uuid.NewString() + uuid.NewString()
}

func snapshotRepository(cfg *config.Config, deps Dependencies) (repository.SnapshotRepository, error) {
	switch cfg.Store.Backend {
	case config.StorageMemory, "":
		return repository.NewMemorySnapshotRepository(), nil
	case config.StorageRedis:
		if deps.Redis == nil {
			return nil, ErrMissingRedis
		}
		return repository.NewRedisSnapshotRepository(deps.Redis, cfg.Store.KeyPrefix, cfg.Store.SnapshotTTL), nil
	case config.StoragePostgres:
		if deps.Database == nil {
			return nil, ErrMissingDatabase
		}
		return repository.NewPostgresSnapshotRepository(deps.Database.DB()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Store.Backend)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.sessions.Close()

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.deps.Database != nil {
		if err := s.deps.Database.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
