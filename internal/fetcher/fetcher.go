package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ca-srg/cyberrag/internal/types"
	"golang.org/x/time/rate"
)

// PageFetcher retrieves the raw text of one source page.
// Implementations never panic or return errors past this boundary; failure is
// reported through FetchResult.OK and FetchResult.Err.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) types.FetchResult
}

// Options configures HTTPFetcher.
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	RatePerHost float64
	MaxBytes    int64
}

// HTTPFetcher fetches pages with a plain HTTP GET, pacing requests per host.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client gets a default one using opts.Timeout.
func NewHTTPFetcher(client *http.Client, opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "cyberrag/1.0"
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 4 << 20
	}
	limit := rate.Inf
	if opts.RatePerHost > 0 {
		limit = rate.Limit(opts.RatePerHost)
	}
	return &HTTPFetcher{
		client:    client,
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		limiters:  make(map[string]*rate.Limiter),
		rate:      limit,
	}
}

func (f *HTTPFetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.rate, 1)
		f.limiters[host] = lim
	}
	return lim
}

// Fetch implements PageFetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) types.FetchResult {
	text, err := f.get(ctx, pageURL)
	if err != nil {
		return types.FetchResult{URL: pageURL, Err: err}
	}
	return types.FetchResult{URL: pageURL, Text: text, OK: true}
}

func (f *HTTPFetcher) get(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if err := f.limiterFor(u.Host).Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,text/plain;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}
