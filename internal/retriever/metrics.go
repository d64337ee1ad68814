package retriever

import (
	"context"
	"log"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	fetchMetricsOnce    sync.Once
	fetchCounter        metric.Int64Counter
	fetchFailureCounter metric.Int64Counter
	fetchLatency        metric.Float64Histogram
)

func initFetchMetrics() {
	fetchMetricsOnce.Do(func() {
		meter := otel.Meter("cyberrag/retriever")

		var err error
		fetchCounter, err = meter.Int64Counter(
			"cyberrag.fetch.total",
			metric.WithDescription("Source page fetches attempted"),
		)
		if err != nil {
			log.Printf("observability: failed to create fetch counter: %v", err)
		}

		fetchFailureCounter, err = meter.Int64Counter(
			"cyberrag.fetch.failures",
			metric.WithDescription("Source page fetches that failed or timed out"),
		)
		if err != nil {
			log.Printf("observability: failed to create fetch failure counter: %v", err)
		}

		fetchLatency, err = meter.Float64Histogram(
			"cyberrag.fetch.duration",
			metric.WithDescription("Source page fetch time (ms)"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("observability: failed to create fetch latency histogram: %v", err)
		}
	})
}

func recordFetch(ctx context.Context, pageURL string, ok bool, d time.Duration) {
	initFetchMetrics()
	host := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		host = u.Host
	}
	attrs := metric.WithAttributes(
		attribute.String("source.host", host),
		attribute.Bool("fetch.ok", ok),
	)
	if fetchCounter != nil {
		fetchCounter.Add(ctx, 1, attrs)
	}
	if !ok && fetchFailureCounter != nil {
		fetchFailureCounter.Add(ctx, 1, attrs)
	}
	if fetchLatency != nil {
		fetchLatency.Record(ctx, float64(d.Milliseconds()), attrs)
	}
}
