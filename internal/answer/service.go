package answer

import (
	"context"
	"log"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ca-srg/cyberrag/internal/composer"
	"github.com/ca-srg/cyberrag/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NoQueryText is returned for a missing or blank query.
const NoQueryText = "No query provided. Ask me about cybersecurity in Hong Kong, Japan, or NYC."

var answerTracer = otel.Tracer("cyberrag/answer")

// RegionRouter selects regions for a query.
type RegionRouter interface {
	Route(query string) []string
}

// EvidenceRetriever ranks evidence from the given regions.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, query string, regions []string, k int) types.EvidenceList
}

// Result carries the answer along with what produced it.
type Result struct {
	Query    string             `json:"query"`
	Answer   string             `json:"answer"`
	Regions  []string           `json:"regions"`
	Evidence types.EvidenceList `json:"evidence"`
	Elapsed  time.Duration      `json:"elapsed"`
}

// Options tunes the service.
type Options struct {
	TopK     int
	MaxChars int
	Logger   *log.Logger
}

// Service answers free-text questions. It never fails: every path ends in
// some answer text.
type Service struct {
	router    RegionRouter
	retriever EvidenceRetriever
	composer  composer.AnswerComposer
	fallback  *composer.TemplateComposer
	topK      int
	maxChars  int
	logger    *log.Logger
}

// NewService wires the pipeline. fallback answers when the composer panics.
func NewService(r RegionRouter, ret EvidenceRetriever, c composer.AnswerComposer, fallback *composer.TemplateComposer, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stdout, "answer ", log.LstdFlags)
	}
	if fallback == nil {
		fallback = composer.NewTemplate(nil)
	}
	return &Service{
		router:    r,
		retriever: ret,
		composer:  c,
		fallback:  fallback,
		topK:      opts.TopK,
		maxChars:  opts.MaxChars,
		logger:    opts.Logger,
	}
}

// Answer returns the answer text for query.
func (s *Service) Answer(ctx context.Context, query string) string {
	return s.AnswerDetailed(ctx, query).Answer
}

// AnswerDetailed returns the answer with routing and evidence details.
func (s *Service) AnswerDetailed(ctx context.Context, query string) Result {
	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		recordAnswer(ctx, outcomeNoQuery, time.Since(start))
		return Result{Answer: NoQueryText}
	}

	ctx, span := answerTracer.Start(ctx, "answer.answer")
	defer span.End()

	regions := s.router.Route(query)
	evidence := s.retriever.Retrieve(ctx, query, regions, s.topK)
	text := s.compose(ctx, query, evidence)
	if s.maxChars > 0 {
		text = truncateRunes(text, s.maxChars)
	}

	outcome := outcomeEvidence
	if len(evidence) == 0 {
		outcome = outcomeFallback
	}
	elapsed := time.Since(start)
	recordAnswer(ctx, outcome, elapsed)

	span.SetAttributes(
		attribute.StringSlice("answer.regions", regions),
		attribute.Int("answer.evidence", len(evidence)),
		attribute.String("answer.outcome", outcome),
	)
	s.logger.Printf("event=answer outcome=%s regions=%s evidence=%d duration=%s", outcome, strings.Join(regions, ","), len(evidence), elapsed)

	return Result{Query: query, Answer: text, Regions: regions, Evidence: evidence, Elapsed: elapsed}
}

func (s *Service) compose(ctx context.Context, query string, evidence types.EvidenceList) (text string) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Printf("event=compose status=panic err=%v", p)
			trace.SpanFromContext(ctx).SetStatus(codes.Error, "composer panic")
			text = s.fallback.Compose(ctx, query, evidence)
		}
	}()
	text = s.composer.Compose(ctx, query, evidence)
	if strings.TrimSpace(text) == "" {
		text = s.fallback.Compose(ctx, query, evidence)
	}
	return text
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
