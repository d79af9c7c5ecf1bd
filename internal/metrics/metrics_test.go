package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveOutcome("verified")
	m.ObserveOutcome("verified")
	m.ObserveOutcome("denied")
	m.ObserveMint(120*time.Millisecond, nil)
	m.ObserveMint(time.Second, errors.New("timeout"))
	m.ObserveMenuAction("protect-on")
	m.ObserveHTTP("POST", "/verify-submit", 302, 40*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("verified")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("denied")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.menuActions.WithLabelValues("protect-on")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpReqs.WithLabelValues("POST", "/verify-submit", "302")))
	require.Equal(t, 2, testutil.CollectAndCount(m.mintLatency))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `shield_verification_outcomes_total{outcome="verified"} 2`)
}
