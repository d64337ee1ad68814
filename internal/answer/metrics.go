package answer

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeEvidence = "evidence"
	outcomeFallback = "fallback"
	outcomeNoQuery  = "no_query"
)

var (
	answerMetricsOnce sync.Once
	answerCounter     metric.Int64Counter
	answerLatency     metric.Float64Histogram
)

func initAnswerMetrics() {
	answerMetricsOnce.Do(func() {
		meter := otel.Meter("cyberrag/answer")

		var err error
		answerCounter, err = meter.Int64Counter(
			"cyberrag.answers.total",
			metric.WithDescription("Answers produced by outcome"),
		)
		if err != nil {
			log.Printf("observability: failed to create answer counter: %v", err)
		}

		answerLatency, err = meter.Float64Histogram(
			"cyberrag.answer.duration",
			metric.WithDescription("End-to-end answer time (ms)"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("observability: failed to create answer latency histogram: %v", err)
		}
	})
}

func recordAnswer(ctx context.Context, outcome string, d time.Duration) {
	initAnswerMetrics()
	attrs := metric.WithAttributes(attribute.String("answer.outcome", outcome))
	if answerCounter != nil {
		answerCounter.Add(ctx, 1, attrs)
	}
	if answerLatency != nil {
		answerLatency.Record(ctx, float64(d.Milliseconds()), attrs)
	}
}

