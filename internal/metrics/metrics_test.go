package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	m := New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/api/products/{id}", "404"))
	assert.Equal(t, float64(3), count)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.StoreMutations.WithLabelValues("cart").Inc()
	m.ActiveSessions.Set(2)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `storefront_store_mutations_total{store="cart"} 1`))
	assert.True(t, strings.Contains(string(body), "storefront_active_sessions 2"))
}
