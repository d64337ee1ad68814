package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/ca-srg/cyberrag/internal/types"
	"github.com/chromedp/chromedp"
)

// BrowserFetcher loads pages in headless Chrome so script-rendered sources
// yield their final DOM. Each fetch gets its own tab under a shared allocator.
type BrowserFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	settle      time.Duration
}

// NewBrowserFetcher starts a headless Chrome allocator bound to parent.
func NewBrowserFetcher(parent context.Context, userAgent string) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(parent, opts...)
	return &BrowserFetcher{allocCtx: allocCtx, allocCancel: cancel, settle: 500 * time.Millisecond}
}

// Fetch implements PageFetcher. The caller's deadline bounds the whole page load.
func (b *BrowserFetcher) Fetch(ctx context.Context, pageURL string) types.FetchResult {
	taskCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	// tie the tab to the caller's deadline
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var outer string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &outer, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return types.FetchResult{URL: pageURL, Err: fmt.Errorf("browser fetch: %w", err)}
	}
	return types.FetchResult{URL: pageURL, Text: outer, OK: true}
}

// Close shuts down the browser process.
func (b *BrowserFetcher) Close() {
	b.allocCancel()
}
