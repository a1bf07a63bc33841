package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultSessionExpiration is used when no expiry is configured
	DefaultSessionExpiration = 30 * 24 * time.Hour
)

var (
	ErrInvalidSession = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session has expired")
)

// SessionService issues session tokens and owns the stores of every live session
type SessionService interface {
	Issue(ctx context.Context) (token string, sessionID string, err error)
	Validate(tokenString string) (sessionID string, err error)
	Stores(ctx context.Context, sessionID string) (*store.Stores, error)
	Evict(ctx context.Context, sessionID string, purge bool) error
	Close()
}

// SessionOptions configures a SessionService
type SessionOptions struct {
	Secret               string
	Expiry               time.Duration
	FlushTimeout         time.Duration
	NotificationDuration time.Duration
}

// Claims represents the session token claims
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// session is registered before hydration starts; ready is closed once
// stores is usable
type session struct {
	ready       chan struct{}
	stores      *store.Stores
	unsubscribe func()
}

type sessionService struct {
	repo     repository.SnapshotRepository
	resolver store.ProductResolver
	opts     SessionOptions
	logger   *zap.Logger
	metrics  *metrics.Metrics

	// mu guards the maps only; hydration and purges run without it
	mu       sync.Mutex
	sessions map[string]*session
	evicting map[string]chan struct{}
}

// NewSessionService creates a SessionService persisting to repo. metrics may be nil.
func NewSessionService(
	repo repository.SnapshotRepository,
	resolver store.ProductResolver,
	opts SessionOptions,
	logger *zap.Logger,
	m *metrics.Metrics,
) SessionService {
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultSessionExpiration
	}
	return &sessionService{
		repo:     repo,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
		metrics:  m,
		sessions: make(map[string]*session),
		evicting: make(map[string]chan struct{}),
	}
}

// Issue creates a new session id and a signed token carrying it
func (s *sessionService) Issue(ctx context.Context) (string, string, error) {
	sessionID := uuid.New().String()
	now := time.Now()

	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.opts.Secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, sessionID, nil
}

// Validate verifies a session token and returns its session id
func (s *sessionService) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.opts.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionExpired
		}
		return "", ErrInvalidSession
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidSession
	}

	return claims.SessionID, nil
}

// Stores returns the session's stores, creating and hydrating them on first use.
// Concurrent callers for one session share a single hydration; other sessions
// are never blocked by it. Hydration failures are logged and the affected
// stores start empty.
func (s *sessionService) Stores(ctx context.Context, sessionID string) (*store.Stores, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	for {
		s.mu.Lock()
		if done, ok := s.evicting[sessionID]; ok {
			s.mu.Unlock()
			if err := waitFor(ctx, done); err != nil {
				return nil, err
			}
			continue
		}

		if sess, ok := s.sessions[sessionID]; ok {
			s.mu.Unlock()
			if err := waitFor(ctx, sess.ready); err != nil {
				return nil, err
			}
			return sess.stores, nil
		}

		sess := &session{ready: make(chan struct{}), unsubscribe: func() {}}
		s.sessions[sessionID] = sess
		s.mu.Unlock()

		// Waiters share this hydration, so it must outlive the first caller
		s.hydrate(context.WithoutCancel(ctx), sessionID, sess)
		return sess.stores, nil
	}
}

func (s *sessionService) hydrate(ctx context.Context, sessionID string, sess *session) {
	defer close(sess.ready)

	persister := store.NewPersister(s.repo, sessionID, s.opts.FlushTimeout, s.logger)
	stores := store.NewStores(persister, s.opts.NotificationDuration)

	if err := stores.Hydrate(ctx, s.resolver); err != nil {
		s.logger.Warn("Failed to hydrate session stores",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	if s.metrics != nil {
		sess.unsubscribe = stores.Subscribe(func(name string) {
			s.metrics.StoreMutations.WithLabelValues(name).Inc()
		})
		s.metrics.ActiveSessions.Inc()
	}
	sess.stores = stores

	s.logger.Debug("Session stores created", zap.String("session_id", sessionID))
}

// Evict closes a session's live stores so nothing holding them can write
// again, and with purge deletes its snapshots. Stores calls for the session
// wait until eviction has finished.
func (s *sessionService) Evict(ctx context.Context, sessionID string, purge bool) error {
	done := make(chan struct{})
	var sess *session
	for {
		s.mu.Lock()
		pending, busy := s.evicting[sessionID]
		if !busy {
			sess = s.sessions[sessionID]
			delete(s.sessions, sessionID)
			s.evicting[sessionID] = done
			s.mu.Unlock()
			break
		}
		s.mu.Unlock()
		if err := waitFor(ctx, pending); err != nil {
			return err
		}
	}

	defer func() {
		s.mu.Lock()
		delete(s.evicting, sessionID)
		s.mu.Unlock()
		close(done)
	}()

	if sess != nil {
		<-sess.ready
		s.release(sess)
	}

	if purge {
		persister := store.NewPersister(s.repo, sessionID, s.opts.FlushTimeout, s.logger)
		if err := persister.Purge(ctx); err != nil {
			return fmt.Errorf("failed to purge session: %w", err)
		}
	}

	return nil
}

// Close releases every live session
func (s *sessionService) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		<-sess.ready
		s.release(sess)
	}
}

func (s *sessionService) release(sess *session) {
	sess.unsubscribe()
	sess.stores.Close()
	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
}

func waitFor(ctx context.Context, ch <-chan struct{}) error {
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
