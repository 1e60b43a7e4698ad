package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lanebook",
			Name:      "http_requests_total",
			Help:      "Count of API requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lanebook",
			Name:      "gateway_requests_total",
			Help:      "Count of backend calls by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	gatewayCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lanebook",
			Name:      "gateway_cache_hits_total",
			Help:      "Count of backend responses served from Redis.",
		},
		[]string{"endpoint"},
	)

	gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lanebook",
			Name:      "gateway_request_duration_seconds",
			Help:      "Backend call latency.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	malformedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lanebook",
			Name:      "malformed_records_total",
			Help:      "Count of backend records normalized with missing or unreadable fields.",
		},
		[]string{"kind"},
	)

	slotsEvaluated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lanebook",
			Name:      "slots_evaluated_total",
			Help:      "Count of lane slots classified for timelines.",
		},
	)

	configReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lanebook",
			Name:      "config_reloads_total",
			Help:      "Count of config reload attempts by result.",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			gatewayRequests,
			gatewayCacheHits,
			gatewayDuration,
			malformedRecords,
			slotsEvaluated,
			configReloads,
		)
	})
}

func IncHTTP(route string, code int) {
	httpRequests.WithLabelValues(route, statusLabel(code)).Inc()
}

func ObserveGateway(endpoint string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	gatewayRequests.WithLabelValues(endpoint, outcome).Inc()
	gatewayDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

func IncCacheHit(endpoint string) {
	gatewayCacheHits.WithLabelValues(endpoint).Inc()
}

func IncMalformed(kind string) {
	malformedRecords.WithLabelValues(kind).Inc()
}

func AddSlotsEvaluated(n int) {
	slotsEvaluated.Add(float64(n))
}

func IncConfigReload(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	configReloads.WithLabelValues(result).Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
