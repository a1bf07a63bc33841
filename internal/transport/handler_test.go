package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testAPI struct {
	router   chi.Router
	catalog  *catalog.Catalog
	sessions service.SessionService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	c, err := catalog.Default()
	require.NoError(t, err)

	logger := zap.NewNop()
	sessions := service.NewSessionService(
		repository.NewMemorySnapshotRepository(),
		c,
		service.SessionOptions{
			Secret:               "test-secret",
			Expiry:               time.Hour,
			NotificationDuration: time.Minute,
		},
		logger,
		nil,
	)
	t.Cleanup(sessions.Close)

	sessionMiddleware := middleware.SessionMiddleware(sessions, logger)

	r := chi.NewRouter()
	NewSessionHandler(sessions, logger).RegisterRoutes(r, sessionMiddleware)
	NewCatalogHandler(c, sessions, logger).RegisterRoutes(r, sessionMiddleware)
	NewCartHandler(sessions, c, logger).RegisterRoutes(r, sessionMiddleware)
	NewWishlistHandler(sessions, c, logger).RegisterRoutes(r, sessionMiddleware)
	NewUserHandler(sessions, logger).RegisterRoutes(r, sessionMiddleware)
	NewNotificationHandler(sessions, logger).RegisterRoutes(r, sessionMiddleware)
	NewFilterHandler(sessions, logger).RegisterRoutes(r, sessionMiddleware)
	NewEventsHandler(sessions, logger).RegisterRoutes(r, sessionMiddleware)

	return &testAPI{router: r, catalog: c, sessions: sessions}
}

// newSession issues a session through the API and returns its token
func (a *testAPI) newSession(t *testing.T) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/session", "", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v))
}
