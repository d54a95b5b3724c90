package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samvad-hq/position-parser/internal/analyzer"
	"github.com/samvad-hq/position-parser/internal/api"
	"github.com/samvad-hq/position-parser/internal/cache"
	"github.com/samvad-hq/position-parser/internal/config"
	"github.com/samvad-hq/position-parser/internal/crawler"
	"github.com/samvad-hq/position-parser/internal/logger"
	"github.com/samvad-hq/position-parser/internal/pipeline"
	"github.com/samvad-hq/position-parser/internal/storage"
	"github.com/samvad-hq/position-parser/pkg/publishers"
)

const completerMaxRetries = 2

// App owns every long-lived component of the parser: the cache store, the
// publisher fanout, the pipeline and the HTTP surface built on top of them.
type App struct {
	cfg      *config.Config
	log      logger.Logger
	store    storage.Store
	cache    *cache.Cache
	fanout   *publishers.Fanout
	pipeline *pipeline.Orchestrator
	server   *api.Server
}

// New builds the parser runtime from cfg.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	a := &App{cfg: cfg, log: log}

	store, err := storage.NewStore(cfg.CacheType, storage.Options{Dir: cfg.CacheDir, BoltPath: cfg.BBoltPath})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	a.store = store
	a.cache = cache.New(store, log)
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":          cfg.CacheType,
		"dir":           cfg.CacheDir,
		"path":          cfg.BBoltPath,
		"cache_enabled": cfg.CacheEnabled,
	})

	posAnalyzer, err := buildAnalyzer(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.fanout = fanout

	fetcher := crawler.NewFetcher(crawler.DefaultHTTPClient(cfg.FetchTimeout, cfg.UserAgent), cfg.FetchTimeout, log)
	opts := pipeline.Options{
		Scraper:      crawler.NewService(fetcher, log),
		Analyzer:     posAnalyzer,
		Cache:        a.cache,
		CacheEnabled: cfg.CacheEnabled,
		DevMode:      cfg.DevMode,
		Log:          log,
	}
	if fanout != nil {
		opts.Notifier = fanout
	}
	orch, err := pipeline.New(opts)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	a.pipeline = orch

	a.server = api.NewServer(orch, a.cache, api.Options{
		APIKey:         cfg.APIKey,
		AllowedOrigins: cfg.Origins(),
	}, log)

	log.InfoObj("parser initialized", "parser_state", map[string]any{
		"dev_mode":        cfg.DevMode,
		"cache_enabled":   cfg.CacheEnabled,
		"api_key_enabled": cfg.APIKey != "",
		"allowed_origins": cfg.Origins(),
		"model":           cfg.AnthropicModel,
	})
	return a, nil
}

// buildAnalyzer wires the Anthropic completer. A missing key is fatal unless dev
// mode serves mock results instead.
func buildAnalyzer(cfg *config.Config, log logger.Logger) (*analyzer.Analyzer, error) {
	if cfg.AnthropicAPIKey == "" {
		if cfg.DevMode {
			log.WarnObj("anthropic api key not set; analysis disabled", "dev_mode", true)
			return analyzer.New(nil, log), nil
		}
		return nil, fmt.Errorf("anthropic_api_key is required unless dev_mode is enabled")
	}
	completer, err := analyzer.NewAnthropicCompleter(analyzer.AnthropicOptions{
		APIKey:     cfg.AnthropicAPIKey,
		Model:      cfg.AnthropicModel,
		MaxTokens:  int(cfg.AnthropicMaxTokens),
		Timeout:    cfg.AnalysisTimeout,
		BaseURL:    cfg.AnthropicBaseURL,
		MaxRetries: completerMaxRetries,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("build completer: %w", err)
	}
	return analyzer.New(completer, log), nil
}

// buildFanout loads the optional publishers registry. No file means no notifications.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("publishers disabled", "publishers_file", "")
		return nil, nil
	}
	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		log.WarnObj("publishers registry has no enabled entries", "publishers_file", cfg.PublishersFile)
		return nil, nil
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Handler returns the HTTP surface.
func (a *App) Handler() http.Handler { return a.server.Handler() }

// Pipeline returns the orchestrator for direct, non-HTTP runs.
func (a *App) Pipeline() *pipeline.Orchestrator { return a.pipeline }

// Cache returns the response cache.
func (a *App) Cache() *cache.Cache { return a.cache }

// Close waits for pending result notifications, then releases the publishers and the
// storage backend, logging any errors encountered.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.pipeline != nil {
		a.pipeline.Wait()
	}
	if a.fanout != nil {
		a.fanout.Close()
		a.fanout = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.ErrorObj("storage close failed", "error", err)
		}
		a.store = nil
	}
}
