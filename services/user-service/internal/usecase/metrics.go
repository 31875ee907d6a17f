package usecase

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_service_auth_attempts_total",
			Help: "Signup and login attempts by outcome",
		},
		[]string{"operation", "result"},
	)

	graphMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_service_graph_mutations_total",
			Help: "User graph mutations by operation and outcome",
		},
		[]string{"operation", "result"},
	)

	graphReadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_service_graph_read_duration_seconds",
			Help:    "Time spent composing expanded user reads",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)
)

// resultLabel buckets an error into a low-cardinality metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidIdentifier),
		errors.Is(err, ErrMissingCredentials):
		return "rejected"
	case errors.Is(err, ErrDuplicateEmail),
		errors.Is(err, ErrUserExists):
		return "conflict"
	case errors.Is(err, ErrInvalidCredentials):
		return "denied"
	case errors.Is(err, ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}
