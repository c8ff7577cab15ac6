// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Library-internal metrics on the default registry. Other genutil packages
// record into these rather than registering their own collectors.
var (
	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genutil_cache_ops_total",
		Help: "Cache operations by backend and outcome (hit, miss, set, eviction)",
	}, []string{"backend", "outcome"})

	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "genutil_circuit_breaker_state",
		Help: "Circuit breaker state by component (active state is 1, others 0)",
	}, []string{"component", "state"})

	circuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genutil_circuit_breaker_trips_total",
		Help: "Total circuit breaker transitions to the open state",
	}, []string{"component"})

	retryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genutil_retry_attempts_total",
		Help: "Retry attempts by operation and outcome",
	}, []string{"operation", "outcome"})
)

var circuitStates = []string{"closed", "half-open", "open"}

// RecordCacheOp counts a cache operation outcome for a backend.
func RecordCacheOp(backend, outcome string) {
	cacheOps.WithLabelValues(backend, outcome).Inc()
}

// SetCircuitBreakerState records the active circuit breaker state for a component.
func SetCircuitBreakerState(component, state string) {
	for _, s := range circuitStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		circuitBreakerState.WithLabelValues(component, s).Set(value)
	}
}

// RecordCircuitBreakerTrip increments the trip counter when a breaker opens.
func RecordCircuitBreakerTrip(component string) {
	circuitBreakerTrips.WithLabelValues(component).Inc()
}

// RecordRetryAttempt counts a retry attempt outcome for an operation.
func RecordRetryAttempt(operation, outcome string) {
	retryAttempts.WithLabelValues(operation, outcome).Inc()
}
