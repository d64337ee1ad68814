package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/cyberrag/internal/answer"
	"github.com/ca-srg/cyberrag/internal/metrics"
	"github.com/ca-srg/cyberrag/internal/types"
)

type stubAnswerer struct {
	lastQuery string
}

func (s *stubAnswerer) AnswerDetailed(_ context.Context, query string) answer.Result {
	s.lastQuery = query
	if strings.TrimSpace(query) == "" {
		return answer.Result{Answer: answer.NoQueryText}
	}
	return answer.Result{
		Query:   query,
		Answer:  "Ransomware advisories are published by NICT.",
		Regions: []string{"japan"},
		Evidence: types.EvidenceList{
			{Sentence: types.Sentence{Text: "NICT warns about ransomware campaigns.", SourceURL: "https://nco.nict.go.jp/en"}, Score: 1},
		},
	}
}

func callRequest(t *testing.T, args any) *mcp.CallToolRequest {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: answerToolName, Arguments: raw}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestAnswerToolHandle(t *testing.T) {
	stub := &stubAnswerer{}
	tool := NewAnswerTool(stub)

	t.Run("answers query", func(t *testing.T) {
		res, err := tool.Handle(context.Background(), callRequest(t, map[string]any{"query": "ransomware japan"}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, "Ransomware advisories are published by NICT.", resultText(t, res))
		assert.Equal(t, "ransomware japan", stub.lastQuery)
	})

	t.Run("shows evidence on request", func(t *testing.T) {
		res, err := tool.Handle(context.Background(), callRequest(t, map[string]any{"query": "ransomware japan", "show_evidence": true}))
		require.NoError(t, err)
		text := resultText(t, res)
		assert.Contains(t, text, "Evidence (regions: japan)")
		assert.Contains(t, text, "1. [score 1] NICT warns about ransomware campaigns. (https://nco.nict.go.jp/en)")
	})

	t.Run("missing arguments give no-query text", func(t *testing.T) {
		res, err := tool.Handle(context.Background(), &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: answerToolName}})
		require.NoError(t, err)
		assert.Equal(t, answer.NoQueryText, resultText(t, res))
	})

	t.Run("malformed arguments are a tool error", func(t *testing.T) {
		req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Name: answerToolName, Arguments: json.RawMessage(`{"query": 42}`)}}
		res, err := tool.Handle(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestAnswerToolRecordsInvocation(t *testing.T) {
	store, err := metrics.OpenStore(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	metrics.SetStoreForTesting(store)
	t.Cleanup(func() {
		metrics.SetStoreForTesting(nil)
		_ = store.Close()
	})

	tool := NewAnswerTool(&stubAnswerer{})
	_, err = tool.Handle(context.Background(), callRequest(t, map[string]any{"query": "phishing"}))
	require.NoError(t, err)

	count, err := store.CountOn(metrics.ChannelMCP, time.Now().Format("2006-01-02"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestServerOverInMemoryTransport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := NewServer(&stubAnswerer{}, &types.Config{MCPServerHost: "localhost", MCPServerPort: 8090}, "test")
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := srv.sdk.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer func() { _ = serverSession.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, answerToolName, tools.Tools[0].Name)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      answerToolName,
		Arguments: map[string]any{"query": "ransomware japan"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ransomware advisories are published by NICT.", resultText(t, res))
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(&stubAnswerer{}, &types.Config{MCPServerHost: "127.0.0.1", MCPServerPort: 9000}, "1.2.3")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "127.0.0.1:9000", body["address"])
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.3")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}
