// Package pipeline sequences cache lookup, scraping, analysis and cache write for one request.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samvad-hq/position-parser/internal/analyzer"
	"github.com/samvad-hq/position-parser/internal/cache"
	"github.com/samvad-hq/position-parser/internal/crawler"
	"github.com/samvad-hq/position-parser/internal/domain"
	"github.com/samvad-hq/position-parser/internal/logger"
	"github.com/samvad-hq/position-parser/internal/metrics"
	"github.com/samvad-hq/position-parser/pkg/publishers"
)

const (
	msgDevMode        = "DEV_MODE: Using mock data..."
	msgCacheHit       = "Found cached response..."
	msgScraping       = "Scraping %d URL(s)..."
	msgPartial        = "Scraped %d/%d URLs successfully"
	msgAnalyzing      = "Analyzing content..."
	msgNothingScraped = "Failed to scrape any content from provided URLs."

	notifyTimeout = 10 * time.Second
)

// PositionAnalyzer extracts positions from scraped content.
type PositionAnalyzer interface {
	Analyze(ctx context.Context, content domain.ContentMap) (domain.AnalysisResult, error)
}

// ResultCache stores analysis results by URL set.
type ResultCache interface {
	Get(urls []string) (domain.AnalysisResult, bool)
	Set(urls []string, result domain.AnalysisResult)
}

// Notifier receives a summary of every freshly computed result.
type Notifier interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Options wires the orchestrator's collaborators.
type Options struct {
	Scraper      crawler.BatchScraper
	Analyzer     PositionAnalyzer
	Cache        ResultCache
	Notifier     Notifier
	CacheEnabled bool
	DevMode      bool
	Log          logger.Logger
}

// Orchestrator runs one pipeline per call. It holds no per-run state and is safe for
// concurrent use.
type Orchestrator struct {
	scraper      crawler.BatchScraper
	analyzer     PositionAnalyzer
	cache        ResultCache
	notifier     Notifier
	cacheEnabled bool
	devMode      bool
	log          logger.Logger

	notifying sync.WaitGroup
}

// New validates opts and builds an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if !opts.DevMode {
		if opts.Scraper == nil {
			return nil, errors.New("pipeline: scraper is required")
		}
		if opts.Analyzer == nil {
			return nil, errors.New("pipeline: analyzer is required")
		}
	}
	if opts.CacheEnabled && opts.Cache == nil {
		return nil, errors.New("pipeline: cache is required when caching is enabled")
	}
	return &Orchestrator{
		scraper:      opts.Scraper,
		analyzer:     opts.Analyzer,
		cache:        opts.Cache,
		notifier:     opts.Notifier,
		cacheEnabled: opts.CacheEnabled,
		devMode:      opts.DevMode,
		log:          logger.Ensure(opts.Log),
	}, nil
}

// Run executes the pipeline for urls, calling emit for every event in order.
// Exactly one terminal event (result or error) is emitted, and it is the last one.
func (o *Orchestrator) Run(ctx context.Context, urls []string, emit func(domain.Event)) {
	outcome := o.run(ctx, crawler.NormalizeAll(urls), emit)
	metrics.ObservePipeline(outcome)
	o.log.InfoObj("pipeline finished", "pipeline_run", map[string]any{
		"urls":    len(urls),
		"outcome": outcome,
	})
}

// Stream runs the pipeline in its own goroutine and delivers events on the returned
// channel, which is closed after the terminal event. Events are dropped once ctx is done.
func (o *Orchestrator) Stream(ctx context.Context, urls []string) <-chan domain.Event {
	ch := make(chan domain.Event)
	go func() {
		defer close(ch)
		o.Run(ctx, urls, func(evt domain.Event) {
			select {
			case ch <- evt:
			case <-ctx.Done():
			}
		})
	}()
	return ch
}

func (o *Orchestrator) run(ctx context.Context, urls []string, emit func(domain.Event)) string {
	if o.devMode {
		emit(domain.Progress(msgDevMode))
		emit(domain.Result(MockResult()))
		return "dev_mock"
	}

	if o.cacheEnabled {
		if cached, ok := o.cache.Get(urls); ok {
			emit(domain.Progress(msgCacheHit))
			emit(domain.Result(cached))
			return "cache_hit"
		}
	}

	// in-flight work is not cancelled when the client goes away
	work := context.WithoutCancel(ctx)

	emit(domain.Progress(msgScraping, len(urls)))
	content, scrapeErrs := o.scraper.ScrapeAll(work, urls)

	if len(content) == 0 {
		msg := msgNothingScraped
		if len(scrapeErrs) > 0 {
			msg = crawler.UserMessage(scrapeErrs[0])
		}
		emit(domain.Error(msg))
		return "scrape_failed"
	}
	if len(content) < len(urls) {
		emit(domain.Progress(msgPartial, len(content), len(urls)))
	}

	emit(domain.Progress(msgAnalyzing))
	res, err := o.analyzer.Analyze(work, content)
	if err != nil {
		o.log.ErrorObj("analysis failed", "analysis_error", err.Error())
		emit(domain.Error(analyzer.FailureMessage(err)))
		return "analysis_failed"
	}

	res = res.AppendWarnings(crawler.UserMessages(scrapeErrs)...).Normalize()
	if o.cacheEnabled {
		o.cache.Set(urls, res)
	}
	emit(domain.Result(res))
	o.notifyAsync(work, urls, res)
	return "success"
}

// notifyAsync publishes off the event path so a slow sink never delays the terminal event.
func (o *Orchestrator) notifyAsync(ctx context.Context, urls []string, res domain.AnalysisResult) {
	if o.notifier == nil {
		return
	}
	o.notifying.Add(1)
	go func() {
		defer o.notifying.Done()
		o.notify(ctx, urls, res)
	}()
}

// Wait blocks until every in-flight result notification has finished.
func (o *Orchestrator) Wait() {
	o.notifying.Wait()
}

func (o *Orchestrator) notify(ctx context.Context, urls []string, res domain.AnalysisResult) {
	if o.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	evt := publishers.NewEvent(cache.Fingerprint(urls), urls, res)
	sent, err := o.notifier.Publish(ctx, evt)
	if err != nil {
		o.log.WarnObj("result notification failed", "notify_error", map[string]any{
			"fingerprint": evt.Fingerprint,
			"delivered":   sent,
			"error":       err.Error(),
		})
		return
	}
	o.log.DebugObj("result notification sent", "notify", map[string]any{
		"fingerprint": evt.Fingerprint,
		"delivered":   sent,
	})
}
