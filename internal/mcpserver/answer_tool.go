package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ca-srg/cyberrag/internal/answer"
	"github.com/ca-srg/cyberrag/internal/metrics"
)

const answerToolName = "answer_query"

var mcpTracer = otel.Tracer("cyberrag/mcpserver")

// Answerer is the answer pipeline as seen by MCP tools.
type Answerer interface {
	AnswerDetailed(ctx context.Context, query string) answer.Result
}

type answerArgs struct {
	Query        string `json:"query"`
	ShowEvidence bool   `json:"show_evidence"`
}

// AnswerTool exposes the answer pipeline as an MCP tool.
type AnswerTool struct {
	answerer Answerer
}

func NewAnswerTool(answerer Answerer) *AnswerTool {
	return &AnswerTool{answerer: answerer}
}

// Definition describes the tool and its input schema.
func (t *AnswerTool) Definition() *mcp.Tool {
	return &mcp.Tool{
		Name: answerToolName,
		Description: "Answer a cybersecurity question for Hong Kong, Japan or New York City " +
			"from live official sources. Mention a region to narrow the search.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "The question, e.g. \"What does NICT say about ransomware in Japan?\"",
				},
				"show_evidence": {
					Type:        "boolean",
					Description: "Append the ranked passages and their scores",
				},
			},
			Required: []string{"query"},
		},
	}
}

// Handle answers one tool call. A malformed argument object is reported as a
// tool error; a blank query gets the usual no-query text.
func (t *AnswerTool) Handle(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	metrics.RecordInvocation(metrics.ChannelMCP)

	ctx, span := mcpTracer.Start(ctx, "mcpserver.answer_query")
	defer span.End()

	var args answerArgs
	if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			toolCall{tool: answerToolName, outcome: outcomeInvalidArguments, elapsed: time.Since(start)}.record(ctx)
			return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}

	res := t.answerer.AnswerDetailed(ctx, args.Query)
	span.SetAttributes(
		attribute.StringSlice("mcp.regions", res.Regions),
		attribute.Int("mcp.evidence", len(res.Evidence)),
	)

	text := res.Answer
	if args.ShowEvidence && len(res.Evidence) > 0 {
		text += "\n\n" + formatEvidence(res)
	}
	outcome := outcomeAnswered
	if len(res.Evidence) == 0 {
		outcome = outcomeNoEvidence
	}
	toolCall{
		tool:         answerToolName,
		outcome:      outcome,
		showEvidence: args.ShowEvidence,
		evidence:     len(res.Evidence),
		elapsed:      time.Since(start),
	}.record(ctx)
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, nil
}

func formatEvidence(res answer.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Evidence (regions: %s)", strings.Join(res.Regions, ", "))
	for i, item := range res.Evidence {
		fmt.Fprintf(&b, "\n%d. [score %d] %s (%s)", i+1, item.Score, item.Sentence.Text, item.Sentence.SourceURL)
	}
	return b.String()
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}
