package rpcclient

import "github.com/prometheus/client_golang/prometheus"

// clientMetrics are the prometheus counters a Client exports when
// constructed with WithMetrics.
type clientMetrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nearclient",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total JSON-RPC requests attempted, including retries.",
		}, []string{"method"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nearclient",
			Subsystem: "rpc",
			Name:      "retries_total",
			Help:      "Total JSON-RPC retries performed.",
		}, []string{"method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nearclient",
			Subsystem: "rpc",
			Name:      "errors_total",
			Help:      "Total JSON-RPC calls that ultimately failed, by error kind.",
		}, []string{"method", "kind"}),
	}
	reg.MustRegister(m.requests, m.retries, m.errors)
	return m
}

// noopMetrics is used when a Client is constructed without WithMetrics;
// its vectors are never registered so WithLabelValues is safe to call but
// the samples go nowhere.
var noopMetrics = &clientMetrics{
	requests: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "noop_requests"}, []string{"method"}),
	retries:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "noop_retries"}, []string{"method"}),
	errors:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "noop_errors"}, []string{"method", "kind"}),
}
