package naoqi

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	proxyCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "naoqi_proxy_calls_total",
			Help: "Proxy calls issued to the robot middleware, by outcome.",
		},
		[]string{"module", "method", "outcome"},
	)

	proxyCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "naoqi_proxy_call_duration_seconds",
			Help:    "Round-trip time of proxy calls.",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"module", "method"},
	)
)

func init() {
	prometheus.MustRegister(proxyCalls, proxyCallDuration)
}

// outcome labels a call result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTransformUnavailable):
		return "transform_unavailable"
	case errors.Is(err, ErrRemoteUnavailable):
		return "unavailable"
	case errors.Is(err, ErrConnection):
		return "connection"
	default:
		return "error"
	}
}
