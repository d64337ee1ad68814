package observability

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ca-srg/cyberrag/internal/types"
)

const (
	protocolHTTP = "http/protobuf"
	protocolGRPC = "grpc"

	serviceNameKey = "service.name"
)

// Settings are the OpenTelemetry options resolved from the process config.
type Settings struct {
	Enabled          bool
	ServiceName      string
	Endpoint         string
	Protocol         string
	Attributes       map[string]string
	Sampler          string
	SamplerArg       float64
	MetricInterval   time.Duration
	ShutdownDeadline time.Duration
}

// FromConfig builds validated Settings.
func FromConfig(cfg *types.Config) (*Settings, error) {
	if cfg == nil {
		return nil, fmt.Errorf("observability: nil configuration")
	}
	attrs, err := parseAttributes(cfg.OTelResourceAttributes)
	if err != nil {
		return nil, fmt.Errorf("observability: resource attributes: %w", err)
	}
	s := &Settings{
		Enabled:     cfg.OTelEnabled,
		ServiceName: strings.TrimSpace(cfg.OTelServiceName),
		Endpoint:    strings.TrimSpace(cfg.OTelExporterOTLPEndpoint),
		Protocol:    strings.ToLower(strings.TrimSpace(cfg.OTelExporterOTLPProtocol)),
		Attributes:  attrs,
		Sampler:     strings.ToLower(strings.TrimSpace(cfg.OTelTracesSampler)),
		SamplerArg:  cfg.OTelTracesSamplerArg,
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.ServiceName == "" {
		s.ServiceName = "cyberrag"
	}
	if s.Protocol == "" {
		s.Protocol = protocolHTTP
	}
	if s.Sampler == "" {
		s.Sampler = "always_on"
	}
	if s.MetricInterval <= 0 {
		s.MetricInterval = time.Minute
	}
	if s.ShutdownDeadline <= 0 {
		s.ShutdownDeadline = 5 * time.Second
	}
	if s.Attributes == nil {
		s.Attributes = make(map[string]string)
	}
	if _, ok := s.Attributes[serviceNameKey]; !ok {
		s.Attributes[serviceNameKey] = s.ServiceName
	}

	if !s.Enabled {
		return nil
	}

	if s.Endpoint == "" {
		return fmt.Errorf("observability: OTEL_EXPORTER_OTLP_ENDPOINT is required when OpenTelemetry is enabled")
	}
	switch s.Protocol {
	case protocolHTTP:
		u, err := url.Parse(s.Endpoint)
		if err != nil {
			return fmt.Errorf("observability: invalid OTLP endpoint: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("observability: http/protobuf endpoint must be an absolute http(s) URL")
		}
	case protocolGRPC:
		if _, _, err := grpcTarget(s.Endpoint); err != nil {
			return fmt.Errorf("observability: invalid OTLP gRPC endpoint: %w", err)
		}
	default:
		return fmt.Errorf("observability: unsupported OTLP protocol %q", s.Protocol)
	}

	if s.Sampler == "traceidratio" && (s.SamplerArg <= 0 || s.SamplerArg > 1) {
		return fmt.Errorf("observability: traceidratio sampler needs an argument in (0, 1]")
	}
	return nil
}

// parseAttributes reads "k1=v1,k2=v2".
func parseAttributes(input string) (map[string]string, error) {
	attrs := make(map[string]string)
	for _, pair := range strings.Split(input, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid pair %q", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("empty key in %q", pair)
		}
		attrs[key] = strings.TrimSpace(value)
	}
	return attrs, nil
}
