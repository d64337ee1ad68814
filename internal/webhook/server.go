package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ca-srg/cyberrag/internal/types"
)

const maxRequestBytes = 64 << 10

// Answerer produces answer text for a query. It never fails.
type Answerer interface {
	Answer(ctx context.Context, query string) string
}

// Server exposes the answer pipeline over HTTP.
type Server struct {
	answerer Answerer
	engine   *gin.Engine
	addr     string
	logger   *log.Logger
}

// NewServer builds the gin engine and routes.
func NewServer(answerer Answerer, cfg *types.Config) *Server {
	if cfg.ServerReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		answerer: answerer,
		engine:   gin.New(),
		addr:     net.JoinHostPort(cfg.ServerHost, strconv.Itoa(cfg.ServerPort)),
		logger:   log.New(os.Stdout, "webhook ", log.LstdFlags),
	}

	s.engine.Use(gin.Recovery(), RequestIDMiddleware())
	if origins := splitOrigins(cfg.ServerCORSOrigins); len(origins) > 0 {
		s.engine.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
	if cfg.ServerAccessLog {
		s.engine.Use(AccessLogMiddleware(s.logger))
	}
	s.engine.Use(RequestSizeLimitMiddleware(maxRequestBytes))

	s.engine.GET("/health", s.handleHealth)

	limited := s.engine.Group("/", RateLimitMiddleware(cfg.ServerRatePerMin))
	{
		limited.POST("/webhook", s.handleWebhook)
		limited.POST("/v1/answer", s.handleAnswer)
	}
	return s
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Handler returns the HTTP handler for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
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
			return fmt.Errorf("webhook server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Printf("event=shutdown addr=%s", s.addr)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("webhook shutdown failed: %w", err)
	}
	return nil
}
