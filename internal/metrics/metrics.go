package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls counts tool invocations by outcome.
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Total number of tool calls",
		},
		[]string{"tool_name", "status"},
	)

	// CalculationErrors counts failed tool calls by error type.
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calculation_errors_total",
			Help: "Number of failed calculations",
		},
		[]string{"tool_name", "error_type"},
	)

	// APICalls counts HTTP API calls.
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_calls_total",
			Help: "HTTP API calls",
		},
		[]string{"service", "endpoint", "status"},
	)

	// StoreOperations counts record store operations.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Record store operations",
		},
		[]string{"operation", "collection", "status"},
	)
)

// ObserveStore records the outcome of a store operation.
func ObserveStore(operation, collection string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StoreOperations.WithLabelValues(operation, collection, status).Inc()
}
