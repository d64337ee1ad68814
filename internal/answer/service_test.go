package answer

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/ca-srg/cyberrag/internal/composer"
	"github.com/ca-srg/cyberrag/internal/config"
	"github.com/ca-srg/cyberrag/internal/normalizer"
	"github.com/ca-srg/cyberrag/internal/retriever"
	"github.com/ca-srg/cyberrag/internal/router"
	"github.com/ca-srg/cyberrag/internal/segmenter"
	"github.com/ca-srg/cyberrag/internal/tokenizer"
	"github.com/ca-srg/cyberrag/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageFetcher map[string]string

func (p pageFetcher) Fetch(_ context.Context, pageURL string) types.FetchResult {
	text, ok := p[pageURL]
	if !ok {
		return types.FetchResult{URL: pageURL, Err: errors.New("unreachable")}
	}
	return types.FetchResult{URL: pageURL, Text: text, OK: true}
}

func newPipeline(t *testing.T, pages pageFetcher, maxChars int) *Service {
	t.Helper()
	src, err := config.LoadSources("")
	require.NoError(t, err)

	quiet := log.New(io.Discard, "", 0)
	rt := router.New(src.Regions)
	ret := retriever.New(pages, rt, normalizer.New(src.UIChrome), segmenter.New(src.MinSentenceLength), tokenizer.New(src.StopWords),
		retriever.Options{FetchTimeout: time.Second, DefaultK: src.TopK, Logger: quiet})

	var urls []string
	for _, r := range src.Regions {
		urls = append(urls, r.URLs...)
	}
	tmpl := composer.NewTemplate(urls)
	return NewService(rt, ret, tmpl, tmpl, Options{TopK: src.TopK, MaxChars: maxChars, Logger: quiet})
}

func TestAnswerEmptyQuery(t *testing.T) {
	svc := newPipeline(t, pageFetcher{}, 900)

	for _, q := range []string{"", "   ", "\n\t"} {
		assert.Equal(t, NoQueryText, svc.Answer(context.Background(), q))
	}
}

func TestAnswerEndToEnd(t *testing.T) {
	pages := pageFetcher{
		"https://nco.nict.go.jp/en": `<html><body><nav>Home About</nav>
			<p>The operation centre was established to coordinate national cyber defence work.</p>
			<p>Organisations should deploy ransomware protection and patch systems promptly.</p>
			<p>Seasonal photographs from the annual open day are available in the archive.</p>
			</body></html>`,
	}
	svc := newPipeline(t, pages, 900)

	res := svc.AnswerDetailed(context.Background(), "Japan ransomware protection")
	assert.Equal(t, []string{"japan"}, res.Regions)
	require.NotEmpty(t, res.Evidence)
	assert.Equal(t, "Organisations should deploy ransomware protection and patch systems promptly.", res.Evidence[0].Sentence.Text)
	assert.Contains(t, res.Answer, "Organisations should deploy ransomware protection")
	assert.Contains(t, res.Answer, "Sources: nco.nict.go.jp")
}

func TestAnswerAllSourcesDown(t *testing.T) {
	svc := newPipeline(t, pageFetcher{}, 900)

	res := svc.AnswerDetailed(context.Background(), "how do I spot phishing")
	assert.Equal(t, []string{"hongkong", "japan", "nyc"}, res.Regions)
	assert.Empty(t, res.Evidence)
	assert.True(t, strings.HasSuffix(res.Answer, composer.CapabilityHint))
	assert.Contains(t, res.Answer, "cybersecurity.hk")
}

func TestAnswerTruncates(t *testing.T) {
	svc := newPipeline(t, pageFetcher{}, 60)

	got := svc.Answer(context.Background(), "phishing")
	assert.Equal(t, 60, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}

type stubRouter []string

func (s stubRouter) Route(string) []string { return s }

type stubRetriever types.EvidenceList

func (s stubRetriever) Retrieve(context.Context, string, []string, int) types.EvidenceList {
	return types.EvidenceList(s)
}

type panicComposer struct{}

func (panicComposer) Compose(context.Context, string, types.EvidenceList) string { panic("boom") }

type blankComposer struct{}

func (blankComposer) Compose(context.Context, string, types.EvidenceList) string { return " " }

func TestAnswerComposerFailuresFallBack(t *testing.T) {
	ev := stubRetriever{{Sentence: types.Sentence{Text: "Use MFA on every account you own.", SourceURL: "https://www.nyc.gov/x"}, Score: 1}}
	quiet := log.New(io.Discard, "", 0)

	for name, c := range map[string]composer.AnswerComposer{"panic": panicComposer{}, "blank": blankComposer{}} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(stubRouter{"nyc"}, ev, c, nil, Options{TopK: 5, Logger: quiet})
			got := svc.Answer(context.Background(), "mfa")
			assert.Contains(t, got, "Use MFA on every account you own.")
		})
	}
}
