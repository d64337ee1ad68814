package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func toolCallCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "cyberrag.mcp.tool_calls" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "expected Sum[int64], got %T", m.Data)
			for _, dp := range sum.DataPoints {
				outcome, _ := dp.Attributes.Value("mcp.outcome")
				counts[outcome.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestToolCallOutcomes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	before := toolCallCounts(t, reader)

	tool := NewAnswerTool(&stubAnswerer{})
	_, err := tool.Handle(context.Background(), callRequest(t, map[string]any{"query": "ransomware japan"}))
	require.NoError(t, err)
	_, err = tool.Handle(context.Background(), callRequest(t, map[string]any{"query": "  "}))
	require.NoError(t, err)
	_, err = tool.Handle(context.Background(), callRequest(t, []string{"not", "an", "object"}))
	require.NoError(t, err)

	after := toolCallCounts(t, reader)
	assert.Equal(t, int64(1), after[outcomeAnswered]-before[outcomeAnswered])
	assert.Equal(t, int64(1), after[outcomeNoEvidence]-before[outcomeNoEvidence])
	assert.Equal(t, int64(1), after[outcomeInvalidArguments]-before[outcomeInvalidArguments])
}
