package retriever

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/ca-srg/cyberrag/internal/fetcher"
	"github.com/ca-srg/cyberrag/internal/normalizer"
	"github.com/ca-srg/cyberrag/internal/router"
	"github.com/ca-srg/cyberrag/internal/segmenter"
	"github.com/ca-srg/cyberrag/internal/tokenizer"
	"github.com/ca-srg/cyberrag/internal/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var retrieverTracer = otel.Tracer("cyberrag/retriever")

const defaultFetchTimeout = 15 * time.Second

// Options tunes retrieval.
type Options struct {
	FetchTimeout time.Duration
	DefaultK     int
	Logger       *log.Logger
}

// Retriever fetches routed sources, splits them into sentences and ranks the
// sentences by lexical overlap with the query. It keeps no per-request state.
type Retriever struct {
	fetcher      fetcher.PageFetcher
	router       *router.Router
	normalizer   *normalizer.Normalizer
	segmenter    *segmenter.Segmenter
	tokenizer    *tokenizer.Tokenizer
	fetchTimeout time.Duration
	defaultK     int
	logger       *log.Logger
}

// New assembles a Retriever from its collaborators.
func New(f fetcher.PageFetcher, r *router.Router, n *normalizer.Normalizer, s *segmenter.Segmenter, t *tokenizer.Tokenizer, opts Options) *Retriever {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.DefaultK <= 0 {
		opts.DefaultK = 5
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stdout, "retriever ", log.LstdFlags)
	}
	return &Retriever{
		fetcher:      f,
		router:       r,
		normalizer:   n,
		segmenter:    s,
		tokenizer:    t,
		fetchTimeout: opts.FetchTimeout,
		defaultK:     opts.DefaultK,
		logger:       opts.Logger,
	}
}

// Retrieve returns up to k evidence sentences from the given regions, best
// first. Sources that fail or time out contribute nothing; if all of them
// fail the result is empty. A k of zero or less uses the configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, regions []string, k int) types.EvidenceList {
	if k <= 0 {
		k = r.defaultK
	}

	ctx, span := retrieverTracer.Start(ctx, "retriever.retrieve")
	defer span.End()

	urls := r.router.URLs(regions)
	span.SetAttributes(
		attribute.StringSlice("retriever.regions", regions),
		attribute.Int("retriever.urls", len(urls)),
		attribute.Int("retriever.k", k),
	)

	candidates, failed := r.collect(ctx, urls)
	evidence := Rank(r.tokenizer.Tokenize(query), candidates, r.tokenizer, k)

	span.SetAttributes(
		attribute.Int("retriever.fetch_failures", failed),
		attribute.Int("retriever.candidates", len(candidates)),
		attribute.Int("retriever.evidence", len(evidence)),
	)
	return evidence
}

// collect fetches every URL concurrently and returns sentences in URL order.
func (r *Retriever) collect(ctx context.Context, urls []string) ([]types.Sentence, int) {
	perDoc := make([][]types.Sentence, len(urls))
	failures := make([]bool, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			start := time.Now()
			res := r.fetchWithTimeout(gctx, u)
			recordFetch(gctx, u, res.OK, time.Since(start))
			if !res.OK {
				failures[i] = true
				r.logger.Printf("event=fetch status=error url=%s duration=%s err=%v", u, time.Since(start), res.Err)
				return nil
			}
			sentences := r.segmenter.Segment(r.normalizer.Normalize(res.Text))
			doc := make([]types.Sentence, len(sentences))
			for j, s := range sentences {
				doc[j] = types.Sentence{Text: s, SourceURL: u}
			}
			perDoc[i] = doc
			r.logger.Printf("event=fetch status=ok url=%s duration=%s sentences=%d", u, time.Since(start), len(doc))
			return nil
		})
	}
	_ = g.Wait()

	var candidates []types.Sentence
	failed := 0
	for i, doc := range perDoc {
		if failures[i] {
			failed++
		}
		candidates = append(candidates, doc...)
	}
	return candidates, failed
}

// fetchWithTimeout bounds a single fetch even if the fetcher ignores its context.
func (r *Retriever) fetchWithTimeout(ctx context.Context, u string) types.FetchResult {
	fctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	done := make(chan types.FetchResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- types.FetchResult{URL: u, Err: fmt.Errorf("fetcher panic: %v", p)}
			}
		}()
		done <- r.fetcher.Fetch(fctx, u)
	}()

	select {
	case res := <-done:
		if res.URL == "" {
			res.URL = u
		}
		if !res.OK && res.Err == nil {
			res.Err = fmt.Errorf("fetch failed")
		}
		return res
	case <-fctx.Done():
		return types.FetchResult{URL: u, Err: fmt.Errorf("fetch timed out after %s: %w", r.fetchTimeout, fctx.Err())}
	}
}

// Rank scores every candidate against the query tokens, keeps zero scores,
// stable-sorts by descending score and returns the first k. Equal scores keep
// candidate order.
func Rank(queryTokens []string, candidates []types.Sentence, tok *tokenizer.Tokenizer, k int) types.EvidenceList {
	scored := make(types.EvidenceList, len(candidates))
	for i, c := range candidates {
		scored[i] = types.ScoredSentence{
			Sentence: c,
			Score:    tokenizer.Overlap(queryTokens, tokenizer.Counts(tok.Tokenize(c.Text))),
		}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	if k >= 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
