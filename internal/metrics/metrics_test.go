package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "LAST_AUTHOR", Outcome(domainerrors.LastAuthor("no")))
	assert.Equal(t, "INTERNAL", Outcome(errors.New("disk")))
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Operation("reorder", nil)
	m.Operation("reorder", nil)
	m.Operation("reorder", domainerrors.InvalidPermutationf("bad"))
	m.RestrictedFlip(true)
	m.VisibilityDenied("guest")

	assert.InDelta(t, 2, testutil.ToFloat64(m.operations.WithLabelValues("reorder", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues("reorder", "INVALID_PERMUTATION")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.restrictedFlips.WithLabelValues("true")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.denials.WithLabelValues("guest")), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Operation("create", nil)
		m.RestrictedFlip(false)
		m.VisibilityDenied("member")
		m.ObserveRequest(http.MethodGet, "/health", 200, time.Millisecond)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/v1/series/{id}", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "seriesd_http_request_duration_seconds")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
