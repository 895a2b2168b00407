package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthenticationsTotal counts authentication attempts by outcome.
	//
	// Example usage:
	// metrics.AuthenticationsTotal.WithLabelValues("authenticated").Inc()
	AuthenticationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenauth_authentications_total",
			Help: "Number of requests inspected by the token interceptor, by outcome.",
		},
		[]string{"outcome"},
	)

	// VerificationDuration is a histogram that tracks the time spent verifying
	// token signatures and claims.
	VerificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tokenauth_verification_duration_seconds",
			Help:    "A histogram of token verification latency.",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"mode"},
	)

	// SecretLoadsTotal counts attempts to load the signing secret at startup.
	SecretLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenauth_secret_loads_total",
			Help: "Number of attempts to load the signing secret, by source and status.",
		},
		[]string{"source", "status"},
	)
)
