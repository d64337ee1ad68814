package composer

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ca-srg/cyberrag/internal/types"
)

// CapabilityHint tells users which regions have live sources.
const CapabilityHint = "I can give live cybersecurity info. Ask about Hong Kong, Japan, or NYC."

// AnswerComposer turns ranked evidence into the final answer text.
// With empty evidence it must still return a non-empty, source-attributed answer.
type AnswerComposer interface {
	Compose(ctx context.Context, query string, evidence types.EvidenceList) string
}

// TemplateComposer builds answers by quoting evidence verbatim.
type TemplateComposer struct {
	attribution []string
	maxQuoted   int
}

// NewTemplate returns a TemplateComposer that cites the hosts of sourceURLs
// when it has no evidence to quote.
func NewTemplate(sourceURLs []string) *TemplateComposer {
	return &TemplateComposer{attribution: hosts(sourceURLs), maxQuoted: 3}
}

// Compose implements AnswerComposer.
func (t *TemplateComposer) Compose(_ context.Context, query string, evidence types.EvidenceList) string {
	if len(evidence) == 0 {
		return t.Fallback()
	}

	quoted := relevant(evidence)
	lead := "Here is what official sources say:"
	if len(quoted) == 0 {
		lead = "No passage matched your question directly. The official sources say:"
		quoted = evidence
	}
	if len(quoted) > t.maxQuoted {
		quoted = quoted[:t.maxQuoted]
	}

	var b strings.Builder
	b.WriteString(lead)
	for _, item := range quoted {
		b.WriteString("\n- ")
		b.WriteString(item.Sentence.Text)
	}
	if src := hosts(quoted.Sources()); len(src) > 0 {
		b.WriteString("\nSources: ")
		b.WriteString(strings.Join(src, ", "))
	}
	return b.String()
}

// Fallback is the answer given when no evidence could be retrieved.
func (t *TemplateComposer) Fallback() string {
	attribution := "official cybersecurity agencies"
	if len(t.attribution) > 0 {
		attribution = strings.Join(t.attribution, ", ")
	}
	return fmt.Sprintf(
		"I could not reach the live sources just now. General best practice from %s: "+
			"keep systems and apps patched, turn on multi-factor authentication, "+
			"keep offline backups of important data and report suspicious messages to your IT or security team. %s",
		attribution, CapabilityHint,
	)
}

func relevant(evidence types.EvidenceList) types.EvidenceList {
	out := make(types.EvidenceList, 0, len(evidence))
	for _, item := range evidence {
		if item.Score > 0 {
			out = append(out, item)
		}
	}
	return out
}

func hosts(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		h := strings.TrimPrefix(u.Host, "www.")
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
