package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Shield collectors. It satisfies verification.Recorder.
type Metrics struct {
	gatherer prometheus.Gatherer

	outcomes    *prometheus.CounterVec
	mintLatency *prometheus.HistogramVec
	menuActions *prometheus.CounterVec
	httpReqs    *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

// New registers the collectors on reg. Passing a fresh prometheus.Registry
// keeps tests isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shield_verification_outcomes_total",
			Help: "Verification attempts by outcome",
		}, []string{"outcome"}),
		mintLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shield_invite_mint_duration_seconds",
			Help:    "Time spent minting single-use invites",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"result"}),
		menuActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shield_menu_actions_total",
			Help: "Owner configuration menu actions",
		}, []string{"action"}),
		httpReqs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shield_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shield_http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObserveOutcome(outcome string) {
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveMint(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mintLatency.WithLabelValues(result).Observe(d.Seconds())
}

func (m *Metrics) ObserveMenuAction(action string) {
	m.menuActions.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpReqs.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
