package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packet_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"path", "method", "status"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packet_login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	GenerateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "packet_generate_failures_total",
			Help: "Total number of failed generate attempts by error code",
		},
		[]string{"error_code"},
	)
)
