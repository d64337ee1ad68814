package metrics

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	otelOnce sync.Once
	otelErr  error
)

// InitOTelMetrics registers an observable gauge reporting the SQLite totals.
// Call it after observability.Init.
func InitOTelMetrics() error {
	otelOnce.Do(func() {
		meter := otel.Meter("cyberrag/metrics")
		_, otelErr = meter.Int64ObservableGauge(
			"cyberrag.invocations.total",
			metric.WithDescription("Cumulative answer requests by channel"),
			metric.WithUnit("{invocations}"),
			metric.WithInt64Callback(observeInvocations),
		)
		if otelErr != nil {
			log.Printf("metrics: failed to create invocation gauge: %v", otelErr)
		}
	})
	return otelErr
}

func observeInvocations(_ context.Context, observer metric.Int64Observer) error {
	stats := Stats()
	for _, c := range Channels {
		observer.Observe(stats[c], metric.WithAttributes(attribute.String("channel", string(c))))
	}
	return nil
}

// ResetOTelForTesting allows InitOTelMetrics to run again.
func ResetOTelForTesting() {
	otelOnce = sync.Once{}
	otelErr = nil
}
