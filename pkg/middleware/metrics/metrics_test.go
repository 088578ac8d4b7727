package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollect_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Collect())
	r.Get("/tenants/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {})

	before := testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("418", "/tenants/{id}", "GET"))
	for _, p := range []string{"/tenants/1", "/tenants/2", "/metrics"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	after := testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("418", "/tenants/{id}", "GET"))
	assert.Equal(t, 2.0, after-before)
	assert.Zero(t, testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("200", "/metrics", "GET")))
}

func TestHookCounters(t *testing.T) {
	before := testutil.ToFloat64(dispatchTotal.WithLabelValues("tenant", "created", OutcomeMatched))
	ObserveDispatch("tenant", "created", OutcomeMatched)
	assert.Equal(t, 1.0, testutil.ToFloat64(dispatchTotal.WithLabelValues("tenant", "created", OutcomeMatched))-before)

	ObserveJobQueued("t", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(queueDepth))
	ObserveJobFinished("t", "succeeded", 10*time.Millisecond, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(queueDepth))
	assert.GreaterOrEqual(t, testutil.ToFloat64(jobsTotal.WithLabelValues("t", "succeeded")), 1.0)
}
