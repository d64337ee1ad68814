package slackbot

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics are in-process counters for the bot.
type Metrics struct {
	Requests       atomic.Int64
	Responses      atomic.Int64
	Errors         atomic.Int64
	RateLimited    atomic.Int64
	TotalLatencyNs atomic.Int64
}

func (m *Metrics) RecordRequest()     { m.Requests.Add(1) }
func (m *Metrics) RecordError()       { m.Errors.Add(1) }
func (m *Metrics) RecordRateLimited() { m.RateLimited.Add(1) }
func (m *Metrics) RecordResponse(d time.Duration) {
	m.Responses.Add(1)
	m.TotalLatencyNs.Add(d.Nanoseconds())
}

var (
	slackMetricsOnce    sync.Once
	slackRequestCounter metric.Int64Counter
	slackLatency        metric.Float64Histogram
)

func initSlackOTelMetrics() {
	slackMetricsOnce.Do(func() {
		meter := otel.Meter("cyberrag/slackbot")

		var err error
		slackRequestCounter, err = meter.Int64Counter(
			"cyberrag.slack.requests.total",
			metric.WithDescription("Slack questions answered, by outcome"),
		)
		if err != nil {
			log.Printf("observability: failed to create slack request counter: %v", err)
		}

		slackLatency, err = meter.Float64Histogram(
			"cyberrag.slack.response_time",
			metric.WithDescription("Time from Slack event to composed reply"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("observability: failed to create slack latency histogram: %v", err)
		}
	})
}

func recordSlackMetrics(ctx context.Context, attrs []attribute.KeyValue, d time.Duration) {
	initSlackOTelMetrics()
	if slackRequestCounter != nil {
		slackRequestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if slackLatency != nil {
		slackLatency.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(attrs...))
	}
}
