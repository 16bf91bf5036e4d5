package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/deals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	before := testutil.ToFloat64(httpErrorsTotal.WithLabelValues(http.MethodGet, "/api/deals/{id}", "500"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/deals/abc", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	after := testutil.ToFloat64(httpErrorsTotal.WithLabelValues(http.MethodGet, "/api/deals/{id}", "500"))
	assert.Equal(t, before+1, after)
}

func TestObserveSync(t *testing.T) {
	SyncStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(syncInFlight))

	before := testutil.ToFloat64(syncAttemptsTotal.WithLabelValues(ResultSuccess))
	ObserveSync(ResultSuccess, time.Now().Add(-time.Second), 42)

	assert.Equal(t, before+1, testutil.ToFloat64(syncAttemptsTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(42), testutil.ToFloat64(syncContacts))
	assert.Equal(t, float64(0), testutil.ToFloat64(syncInFlight))

	ObserveSync("RequestFailed", time.Now(), 0)
	assert.Equal(t, float64(42), testutil.ToFloat64(syncContacts), "failures keep the last count")
}

func TestObserveAuth(t *testing.T) {
	before := testutil.ToFloat64(authEventsTotal.WithLabelValues("sign_in", "failure"))
	ObserveAuth("sign_in", errors.New("bad password"))
	assert.Equal(t, before+1, testutil.ToFloat64(authEventsTotal.WithLabelValues("sign_in", "failure")))
}

func TestRouteFromContext(t *testing.T) {
	assert.Equal(t, "unknown", routeFromContext(context.Background()))

	rctx := chi.NewRouteContext()
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, rctx)
	assert.Equal(t, unmatchedRoute, routeFromContext(ctx))

	rctx.RoutePatterns = append(rctx.RoutePatterns, "/api/deals/{id}")
	assert.Equal(t, "/api/deals/{id}", routeFromContext(ctx))
}

func TestMiddleware_UnmatchedPathsShareOneLabel(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute))

	for _, path := range []string{"/nope/1", "/nope/2", "/wp-admin.php"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute)))
	assert.Zero(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/nope/1")))
}

func TestHandlerServesCollectors(t *testing.T) {
	SyncStarted()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "torque_directory_sync_in_flight"))
}
