package composer

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ca-srg/cyberrag/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var composerTracer = otel.Tracer("cyberrag/composer")

const systemPrompt = `You answer cybersecurity questions for the public.
Use only the numbered evidence sentences supplied by the user message.
Do not add names, numbers, dates or contacts that are not in the evidence.
If the evidence does not answer the question, say so briefly and give general best practice.
Answer in at most five sentences of plain text and cite evidence numbers like [1].`

// ChatModel is a text generation backend.
type ChatModel interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Loader creates a ChatModel. It runs at most once per ModelComposer.
type Loader func(ctx context.Context) (ChatModel, error)

// ModelComposer grounds a generative model in the evidence. The model client
// is created on first use and shared by all later calls; any model failure
// falls back to the template answer.
type ModelComposer struct {
	name     string
	load     Loader
	fallback *TemplateComposer
	timeout  time.Duration
	logger   *log.Logger

	once    sync.Once
	model   ChatModel
	loadErr error
}

// NewModelComposer wraps load behind lazy initialization.
func NewModelComposer(name string, load Loader, fallback *TemplateComposer) *ModelComposer {
	return &ModelComposer{
		name:     name,
		load:     load,
		fallback: fallback,
		timeout:  60 * time.Second,
		logger:   log.New(os.Stdout, "composer ", log.LstdFlags),
	}
}

func (m *ModelComposer) client(ctx context.Context) (ChatModel, error) {
	m.once.Do(func() {
		// detached so a cancelled first request does not poison the shared client
		m.model, m.loadErr = m.load(context.WithoutCancel(ctx))
		if m.loadErr != nil {
			m.logger.Printf("event=model_init backend=%s status=error err=%v", m.name, m.loadErr)
		}
	})
	return m.model, m.loadErr
}

// Compose implements AnswerComposer.
func (m *ModelComposer) Compose(ctx context.Context, query string, evidence types.EvidenceList) string {
	if len(evidence) == 0 {
		return m.fallback.Fallback()
	}

	ctx, span := composerTracer.Start(ctx, "composer.compose")
	defer span.End()
	span.SetAttributes(
		attribute.String("composer.backend", m.name),
		attribute.Int("composer.evidence", len(evidence)),
	)

	model, err := m.client(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model unavailable")
		return m.fallback.Compose(ctx, query, evidence)
	}

	genCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	answer, err := model.Generate(genCtx, systemPrompt, BuildPrompt(query, evidence))
	if err == nil && strings.TrimSpace(answer) == "" {
		err = fmt.Errorf("empty model response")
	}
	if err != nil {
		m.logger.Printf("event=compose backend=%s status=error err=%v", m.name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return m.fallback.Compose(ctx, query, evidence)
	}

	answer = strings.TrimSpace(answer)
	if src := hosts(evidence.Sources()); len(src) > 0 {
		answer += "\nSources: " + strings.Join(src, ", ")
	}
	return answer
}

// BuildPrompt renders the question and numbered evidence for a model.
func BuildPrompt(query string, evidence types.EvidenceList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nEvidence:\n", strings.TrimSpace(query))
	for i, item := range evidence {
		fmt.Fprintf(&b, "[%d] %s (source: %s)\n", i+1, item.Sentence.Text, item.Sentence.SourceURL)
	}
	return b.String()
}
