package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/ca-srg/cyberrag/internal/types"
)

func TestInitExportsOverHTTP(t *testing.T) {
	var traces, metrics atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/traces":
			traces.Add(1)
		case "/v1/metrics":
			metrics.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	shutdown, err := Init(&types.Config{
		OTelEnabled:              true,
		OTelServiceName:          "cyberrag-test",
		OTelExporterOTLPEndpoint: srv.URL,
		OTelExporterOTLPProtocol: "http/protobuf",
		OTelTracesSampler:        "always_on",
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, span := otel.Tracer("cyberrag/test").Start(ctx, "test-span")
	span.End()

	counter, err := otel.Meter("cyberrag/test").Int64Counter("cyberrag.test.counter")
	require.NoError(t, err)
	counter.Add(ctx, 1)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, shutdown(shutdownCtx))

	assert.Positive(t, traces.Load(), "expected a trace export")
	assert.Positive(t, metrics.Load(), "expected a metric export")
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(&types.Config{})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestFromConfig(t *testing.T) {
	t.Run("defaults when disabled", func(t *testing.T) {
		s, err := FromConfig(&types.Config{})
		require.NoError(t, err)
		assert.Equal(t, "cyberrag", s.ServiceName)
		assert.Equal(t, protocolHTTP, s.Protocol)
		assert.Equal(t, "cyberrag", s.Attributes[serviceNameKey])
		assert.Equal(t, time.Minute, s.MetricInterval)
	})

	t.Run("resource attributes parsed", func(t *testing.T) {
		s, err := FromConfig(&types.Config{
			OTelServiceName:        "svc",
			OTelResourceAttributes: "deployment.environment=prod, team = srg ,",
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"deployment.environment": "prod",
			"team":                   "srg",
			serviceNameKey:           "svc",
		}, s.Attributes)
	})

	tests := []struct {
		name string
		cfg  types.Config
	}{
		{name: "attribute without value", cfg: types.Config{OTelResourceAttributes: "novalue"}},
		{name: "enabled without endpoint", cfg: types.Config{OTelEnabled: true}},
		{name: "relative http endpoint", cfg: types.Config{OTelEnabled: true, OTelExporterOTLPEndpoint: "collector:4318"}},
		{name: "unknown protocol", cfg: types.Config{OTelEnabled: true, OTelExporterOTLPEndpoint: "http://c:4318", OTelExporterOTLPProtocol: "thrift"}},
		{name: "ratio out of range", cfg: types.Config{OTelEnabled: true, OTelExporterOTLPEndpoint: "http://c:4318", OTelTracesSampler: "traceidratio", OTelTracesSamplerArg: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromConfig(&tt.cfg)
			assert.Error(t, err)
		})
	}

	_, err := FromConfig(nil)
	assert.Error(t, err)
}
