package mcpserver

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Tool call outcomes.
const (
	outcomeAnswered         = "answered"
	outcomeNoEvidence       = "no_evidence"
	outcomeInvalidArguments = "invalid_arguments"
)

var (
	toolMetricsOnce  sync.Once
	toolCalls        metric.Int64Counter
	toolCallDuration metric.Float64Histogram
	toolEvidence     metric.Int64Histogram
)

func initToolMetrics() {
	toolMetricsOnce.Do(func() {
		meter := otel.Meter("cyberrag/mcpserver")

		var err error
		toolCalls, err = meter.Int64Counter(
			"cyberrag.mcp.tool_calls",
			metric.WithDescription("answer tool calls by outcome"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Printf("observability: failed to create MCP tool call counter: %v", err)
		}

		toolCallDuration, err = meter.Float64Histogram(
			"cyberrag.mcp.tool_call.duration",
			metric.WithDescription("Time from tool call to answer, including source fetches"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("observability: failed to create MCP tool duration histogram: %v", err)
		}

		toolEvidence, err = meter.Int64Histogram(
			"cyberrag.mcp.evidence_returned",
			metric.WithDescription("Ranked passages behind each tool answer"),
			metric.WithUnit("{passage}"),
			metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 5, 10),
		)
		if err != nil {
			log.Printf("observability: failed to create MCP evidence histogram: %v", err)
		}
	})
}

// toolCall is what one answer tool invocation reports.
type toolCall struct {
	tool         string
	outcome      string
	showEvidence bool
	evidence     int
	elapsed      time.Duration
}

func (c toolCall) record(ctx context.Context) {
	initToolMetrics()
	attrs := metric.WithAttributes(
		attribute.String("mcp.tool", c.tool),
		attribute.String("mcp.outcome", c.outcome),
		attribute.Bool("mcp.show_evidence", c.showEvidence),
	)
	if toolCalls != nil {
		toolCalls.Add(ctx, 1, attrs)
	}
	if toolCallDuration != nil {
		toolCallDuration.Record(ctx, float64(c.elapsed.Microseconds())/1000, attrs)
	}
	if c.outcome != outcomeInvalidArguments && toolEvidence != nil {
		toolEvidence.Record(ctx, int64(c.evidence), metric.WithAttributes(attribute.String("mcp.tool", c.tool)))
	}
}
