package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ca-srg/cyberrag/internal/types"
)

// Server serves MCP tools over streamable HTTP.
type Server struct {
	sdk     *mcp.Server
	addr    string
	version string
	logger  *log.Logger
}

// NewServer registers the answer tool on a fresh MCP server.
func NewServer(answerer Answerer, cfg *types.Config, version string) *Server {
	s := &Server{
		sdk:     mcp.NewServer(&mcp.Implementation{Name: "cyberrag", Version: version}, nil),
		addr:    net.JoinHostPort(cfg.MCPServerHost, strconv.Itoa(cfg.MCPServerPort)),
		version: version,
		logger:  log.New(os.Stdout, "mcpserver ", log.LstdFlags),
	}
	tool := NewAnswerTool(answerer)
	s.sdk.AddTool(tool.Definition(), tool.Handle)
	return s
}

// Addr is the listen address.
func (s *Server) Addr() string { return s.addr }

// Handler returns the HTTP handler: MCP on / and /mcp, liveness on /health.
func (s *Server) Handler() http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.sdk }, nil)

	mux := http.NewServeMux()
	mux.Handle("/", mcpHandler)
	mux.Handle("/mcp", mcpHandler)
	mux.HandleFunc("/health", s.handleHealth)
	return s.loggingMiddleware(mux)
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("event=listen addr=%s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("mcp server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Printf("event=shutdown status=error err=%v", err)
		return srv.Close()
	}
	s.logger.Printf("event=shutdown status=ok")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"version": s.version,
		"address": s.addr,
	}); err != nil {
		s.logger.Printf("event=health status=error err=%v", err)
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int64
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += int64(n)
	return n, err
}

// Flush forwards to the underlying writer.
func (lrw *loggingResponseWriter) Flush() {
	if f, ok := lrw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r)
		s.logger.Printf("event=request method=%s path=%s status=%d bytes=%d duration=%s client_ip=%s",
			r.Method, r.URL.Path, lrw.status, lrw.size, time.Since(start), clientIP(r))
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
