package monitoring_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/cabinet-be/internal/auth"
	"github.com/isdelr/cabinet-be/internal/monitoring"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(monitoring.Middleware)
	r.Get("/api/recipes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := monitoring.HTTPRequests.WithLabelValues(http.MethodGet, "/api/recipes/{id}", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/recipes/r1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRegisterMetricsExposesSessionGauge(t *testing.T) {
	store := auth.NewMemoryStore(time.Hour)
	_, err := store.Create(context.Background(), "alice")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	monitoring.RegisterMetrics(reg, store)

	expected := `
# HELP cabinet_active_sessions Number of live login sessions
# TYPE cabinet_active_sessions gauge
cabinet_active_sessions 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "cabinet_active_sessions"))
}
