package gateway

import "github.com/prometheus/client_golang/prometheus"

var (
	routinesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_routines_total",
			Help: "Choreography routines run through the gateway, by outcome.",
		},
		[]string{"routine", "outcome"},
	)

	routineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_routine_duration_seconds",
			Help:    "Wall time of choreography routines.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"routine"},
	)

	partialAborts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_partial_aborts_total",
		Help: "Routines aborted after the robot had already moved.",
	})
)

func init() {
	prometheus.MustRegister(routinesTotal, routineDuration, partialAborts)
}
