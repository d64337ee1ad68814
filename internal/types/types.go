package types

import (
	"errors"
	"time"
)

var (
	// ErrNoSources is returned when the source catalogue defines no regions.
	ErrNoSources = errors.New("no source regions configured")
	// ErrInvalidSourceURL is returned when a region lists a URL that is not absolute http(s).
	ErrInvalidSourceURL = errors.New("invalid source URL")
)

// Region is a named group of authoritative pages selected by query hints.
type Region struct {
	Name  string   `json:"name" yaml:"name"`
	Hints []string `json:"hints" yaml:"hints"`
	URLs  []string `json:"urls" yaml:"urls"`
}

// FetchResult is the outcome of fetching one source page.
// A failed fetch has OK=false and the cause in Err; it is never surfaced as an error value.
type FetchResult struct {
	URL  string
	Text string
	OK   bool
	Err  error
}

// Sentence is a candidate evidence span taken from a fetched page.
type Sentence struct {
	Text      string `json:"text"`
	SourceURL string `json:"source_url"`
}

// ScoredSentence pairs a sentence with its lexical overlap score.
type ScoredSentence struct {
	Sentence Sentence `json:"sentence"`
	Score    int      `json:"score"`
}

// EvidenceList is ranked evidence, highest score first.
type EvidenceList []ScoredSentence

// Sources returns the distinct source URLs in order of first appearance.
func (e EvidenceList) Sources() []string {
	seen := make(map[string]struct{}, len(e))
	urls := make([]string, 0, len(e))
	for _, item := range e {
		u := item.Sentence.SourceURL
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

// Config represents process settings resolved from the environment
type Config struct {
	// Source catalogue
	SourcesFile string `json:"sources_file" env:"SOURCES_FILE"`

	// Fetching
	FetchMode        string        `json:"fetch_mode" env:"FETCH_MODE,default=http"`
	FetchTimeout     time.Duration `json:"fetch_timeout" env:"FETCH_TIMEOUT,default=15s"`
	FetchUserAgent   string        `json:"fetch_user_agent" env:"FETCH_USER_AGENT,default=cyberrag/1.0 (+https://github.com/ca-srg/cyberrag)"`
	FetchRatePerHost float64       `json:"fetch_rate_per_host" env:"FETCH_RATE_PER_HOST,default=2.0"`
	FetchMaxBytes    int64         `json:"fetch_max_bytes" env:"FETCH_MAX_BYTES,default=4194304"`

	// Answer composition
	ComposerBackend string `json:"composer_backend" env:"COMPOSER_BACKEND,default=template"`
	AnswerMaxChars  int    `json:"answer_max_chars" env:"ANSWER_MAX_CHARS,default=900"`
	ChatModel       string `json:"chat_model" env:"CHAT_MODEL,default=anthropic.claude-3-5-sonnet-20240620-v1:0"`
	AWSRegion       string `json:"aws_region" env:"AWS_REGION,default=us-east-1"`
	GeminiAPIKey    string `json:"-" env:"GEMINI_API_KEY"`
	GeminiModel     string `json:"gemini_model" env:"GEMINI_MODEL,default=gemini-2.5-flash"`
	AnthropicAPIKey string `json:"-" env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `json:"anthropic_model" env:"ANTHROPIC_MODEL,default=claude-haiku-4-5"`
	OpenAIAPIKey    string `json:"-" env:"OPENAI_API_KEY"`
	OpenAIModel     string `json:"openai_model" env:"OPENAI_MODEL,default=gpt-4o-mini"`

	// Webhook server
	ServerHost        string `json:"server_host" env:"SERVER_HOST,default=0.0.0.0"`
	ServerPort        int    `json:"server_port" env:"SERVER_PORT,default=8080"`
	ServerRatePerMin  int    `json:"server_rate_per_min" env:"SERVER_RATE_PER_MINUTE,default=120"`
	ServerAccessLog   bool   `json:"server_access_log" env:"SERVER_ACCESS_LOG,default=true"`
	ServerReleaseMode bool   `json:"server_release_mode" env:"SERVER_RELEASE_MODE,default=true"`
	// Comma-separated browser origins allowed to call /v1/answer; empty disables CORS
	ServerCORSOrigins string `json:"server_cors_origins" env:"SERVER_CORS_ORIGINS"`

	// MCP server
	MCPServerHost string `json:"mcp_server_host" env:"MCP_SERVER_HOST,default=localhost"`
	MCPServerPort int    `json:"mcp_server_port" env:"MCP_SERVER_PORT,default=8090"`

	// Invocation statistics
	StatsDBPath string `json:"stats_db_path" env:"STATS_DB_PATH"`

	// OpenTelemetry
	OTelEnabled              bool    `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string  `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=cyberrag"`
	OTelExporterOTLPEndpoint string  `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string  `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string  `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string  `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64 `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
}
