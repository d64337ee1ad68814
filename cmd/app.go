package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ca-srg/cyberrag/internal/answer"
	"github.com/ca-srg/cyberrag/internal/composer"
	appcfg "github.com/ca-srg/cyberrag/internal/config"
	"github.com/ca-srg/cyberrag/internal/fetcher"
	"github.com/ca-srg/cyberrag/internal/metrics"
	"github.com/ca-srg/cyberrag/internal/normalizer"
	"github.com/ca-srg/cyberrag/internal/observability"
	"github.com/ca-srg/cyberrag/internal/retriever"
	"github.com/ca-srg/cyberrag/internal/router"
	"github.com/ca-srg/cyberrag/internal/segmenter"
	"github.com/ca-srg/cyberrag/internal/tokenizer"
)

// app is the wired answer pipeline plus the resources it holds open.
type app struct {
	cfg     *appcfg.Config
	sources *appcfg.Sources
	router  *router.Router
	service *answer.Service
	logger  *log.Logger
	closers []func()
}

// newApp loads configuration and wires the pipeline. Telemetry and stats
// failures are logged and never stop the process.
func newApp(ctx context.Context, name string) (*app, error) {
	logger := log.New(os.Stdout, name+" ", log.LstdFlags)

	cfg, err := appcfg.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	src, err := appcfg.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	a := &app{cfg: cfg, sources: src, logger: logger}

	shutdown, err := observability.Init(cfg)
	if err != nil {
		logger.Printf("event=observability status=error err=%v", err)
	} else {
		a.closers = append(a.closers, func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Printf("event=observability_shutdown status=error err=%v", err)
			}
		})
	}

	if err := metrics.Init(cfg.StatsDBPath); err != nil {
		logger.Printf("event=stats_init status=error err=%v", err)
	} else {
		if err := metrics.InitOTelMetrics(); err != nil {
			logger.Printf("event=stats_gauge status=error err=%v", err)
		}
		a.closers = append(a.closers, func() { _ = metrics.Close() })
	}

	pageFetcher := a.newFetcher(ctx)
	a.router = router.New(src.Regions)
	ret := retriever.New(pageFetcher, a.router,
		normalizer.New(src.UIChrome),
		segmenter.New(src.MinSentenceLength),
		tokenizer.New(src.StopWords),
		retriever.Options{FetchTimeout: cfg.FetchTimeout, DefaultK: src.TopK},
	)

	fallback := composer.NewTemplate(a.allURLs())
	a.service = answer.NewService(a.router, ret, newComposer(cfg, fallback), fallback, answer.Options{
		TopK:     src.TopK,
		MaxChars: cfg.AnswerMaxChars,
	})

	logger.Printf("event=ready regions=%v fetch_mode=%s composer=%s", src.RegionNames(), cfg.FetchMode, cfg.ComposerBackend)
	return a, nil
}

func (a *app) newFetcher(ctx context.Context) fetcher.PageFetcher {
	if a.cfg.FetchMode == appcfg.FetchModeBrowser {
		bf := fetcher.NewBrowserFetcher(ctx, a.cfg.FetchUserAgent)
		a.closers = append(a.closers, bf.Close)
		return bf
	}
	return fetcher.NewHTTPFetcher(nil, fetcher.Options{
		UserAgent:   a.cfg.FetchUserAgent,
		Timeout:     a.cfg.FetchTimeout,
		RatePerHost: a.cfg.FetchRatePerHost,
		MaxBytes:    a.cfg.FetchMaxBytes,
	})
}

func newComposer(cfg *appcfg.Config, fallback *composer.TemplateComposer) composer.AnswerComposer {
	switch cfg.ComposerBackend {
	case appcfg.ComposerBedrock:
		return composer.NewBedrock(cfg.AWSRegion, cfg.ChatModel, fallback)
	case appcfg.ComposerGemini:
		return composer.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, fallback)
	case appcfg.ComposerAnthropic:
		return composer.NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, fallback)
	case appcfg.ComposerOpenAI:
		return composer.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, fallback)
	default:
		return fallback
	}
}

func (a *app) allURLs() []string {
	var urls []string
	for _, r := range a.sources.Regions {
		urls = append(urls, r.URLs...)
	}
	return urls
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
