package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTLPHTTPURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
		wantErr  bool
	}{
		{name: "bare host gets suffix", endpoint: "https://collector.example.com", want: "https://collector.example.com/v1/traces"},
		{name: "plain http kept", endpoint: "http://localhost:4318", want: "http://localhost:4318/v1/traces"},
		{name: "path prefix kept", endpoint: "https://gw.example.com/otlp", want: "https://gw.example.com/otlp/v1/traces"},
		{name: "trailing slash", endpoint: "https://gw.example.com/otlp/", want: "https://gw.example.com/otlp/v1/traces"},
		{name: "suffix already present", endpoint: "https://gw.example.com/v1/traces", want: "https://gw.example.com/v1/traces"},
		{name: "query string kept", endpoint: "https://gw.example.com/otlp?tenant=a", want: "https://gw.example.com/otlp/v1/traces?tenant=a"},
		{name: "empty", endpoint: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := otlpHTTPURL(tt.endpoint, "/v1/traces")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGRPCTarget(t *testing.T) {
	tests := []struct {
		raw       string
		want      string
		plaintext bool
		wantErr   bool
	}{
		{raw: "collector:4317", want: "collector:4317", plaintext: true},
		{raw: "http://collector:4317", want: "collector:4317", plaintext: true},
		{raw: "grpcs://collector:4317", want: "collector:4317"},
		{raw: "https://collector:4317", want: "collector:4317"},
		{raw: "collector", wantErr: true},
		{raw: "ftp://collector:21", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, plaintext, err := grpcTarget(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.plaintext, plaintext)
		})
	}
}
