package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"stock-trader/internal/eod"
	"stock-trader/internal/eod/eodobs"
	"stock-trader/internal/interfaces"
	"stock-trader/internal/llm/claude"
	"stock-trader/internal/llm/llmobs"
	"stock-trader/internal/llm/noop"
	"stock-trader/internal/llm/openai"
	"stock-trader/internal/llm/router"
	"stock-trader/internal/logger"
	"stock-trader/internal/market"
	"stock-trader/internal/news"
	"stock-trader/internal/scheduler"
	"stock-trader/internal/service"
	"stock-trader/internal/storage/postgres"
	"stock-trader/internal/storage/sqlite"
	"stock-trader/internal/store"
	"stock-trader/internal/strategy"
	"stock-trader/internal/tradelog"
)

// app holds the wired services shared by every command.
type app struct {
	cfg      *store.Config
	repo     interfaces.Repository
	journal  *tradelog.Journal
	eod      interfaces.EodSummarizer
	market   *service.MarketDataService
	news     *service.NewsService
	analysis *service.AnalysisService
	signals  *service.SignalService
}

// initializeSystem loads .env and initializes logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", configPath)
		return nil, err
	}
	secrets, err := store.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	repo, err := openRepository(ctx, cfg, secrets)
	if err != nil {
		return nil, err
	}

	sc, err := cfg.StrategyConfig()
	if err != nil {
		repo.Close()
		return nil, err
	}
	cond, err := strategy.Parse(cfg.Strategy.EntryCondition, sc)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("entry condition: %w", err)
	}

	journal := tradelog.New(cfg.Journal.Dir, cfg.Location())
	analyst := initializeAnalyst(ctx, cfg, secrets)

	sources := market.NewFactory(market.FactoryConfig{
		UpbitBaseURL: cfg.Market.UpbitBaseURL,
		Timeout:      30 * time.Second,
	})

	return &app{
		cfg:     cfg,
		repo:    repo,
		journal: journal,
		eod:     eodobs.Wrap(eod.NewSummarizer(cfg.Journal.Dir, cfg.Location())),
		market: service.NewMarketDataService(sources, repo, service.MarketDataConfig{
			Concurrency: cfg.Market.Concurrency,
			Limiter:     scheduler.PerMinute(cfg.Market.RateLimitPerMinute),
			Retry:       retryPolicy(cfg),
		}),
		news:     service.NewNewsService(initializeCrawlers(cfg), repo, scheduler.PerMinute(cfg.News.RateLimitPerMinute)),
		analysis: service.NewAnalysisService(repo, analyst, journal),
		signals:  service.NewSignalService(repo, cond, cfg.Market.Interval, cfg.Market.HistoryCount, journal),
	}, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}

// openRepository opens the configured storage driver
func openRepository(ctx context.Context, cfg *store.Config, secrets *store.Secrets) (interfaces.Repository, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		logger.Info(ctx, "Using Postgres storage")
		return postgres.Open(ctx, secrets.DatabaseURL)
	default:
		logger.Info(ctx, "Using SQLite storage", "path", cfg.Storage.SQLitePath)
		return sqlite.Open(cfg.Storage.SQLitePath)
	}
}

// initializeAnalyst builds the configured LLM analyst with observability.
// A provider without credentials falls back to the noop analyst.
func initializeAnalyst(ctx context.Context, cfg *store.Config, secrets *store.Secrets) interfaces.MarketAnalyst {
	rcfg := router.Config{MaxNews: cfg.LLM.MaxNews, Temperature: cfg.LLM.Temperature}

	var (
		gen router.ChatGenerator
		err error
	)
	switch cfg.LLM.Provider {
	case "OPENAI":
		gen, err = openai.NewChatModel(ctx, openai.Config{
			APIKey:      secrets.OpenAIAPIKey,
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	case "CLAUDE":
		gen, err = claude.NewChatModel(claude.Config{
			APIKey:      secrets.AnthropicAPIKey,
			Model:       cfg.LLM.Model,
			Endpoint:    cfg.LLM.BaseURL,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	}

	var analyst interfaces.MarketAnalyst = noop.NewAnalyst()
	switch {
	case cfg.LLM.Provider == "NOOP":
		logger.Warn(ctx, "No LLM provider configured - using noop analyst (always neutral)")
	case err != nil:
		logger.Warn(ctx, "LLM provider unavailable - using noop analyst", "provider", cfg.LLM.Provider, "error", err)
	default:
		ra, rerr := router.NewAnalyst(ctx, gen, rcfg)
		if rerr != nil {
			logger.Warn(ctx, "Failed to build analyst graph - using noop analyst", "error", rerr)
			break
		}
		analyst = ra
	}

	return llmobs.Wrap(analyst)
}

func initializeCrawlers(cfg *store.Config) []interfaces.NewsCrawler {
	ccfg := news.CrawlerConfig{
		TodayOnly: cfg.News.TodayOnly,
		Timeout:   time.Duration(cfg.News.TimeoutSeconds) * time.Second,
		Location:  cfg.Location(),
	}
	crawlers := make([]interfaces.NewsCrawler, 0, len(cfg.News.Sources))
	for _, src := range cfg.News.Sources {
		crawlers = append(crawlers, news.NewRSSCrawler(news.SourceConfig{
			Name:            src.Name,
			ContentSelector: src.ContentSelector,
			Feeds:           src.Feeds,
		}, ccfg))
	}
	return crawlers
}

func retryPolicy(cfg *store.Config) scheduler.RetryPolicy {
	return scheduler.RetryPolicy{
		MaxRetries: cfg.Retry.MaxRetries,
		MinDelay:   time.Duration(cfg.Retry.MinDelaySeconds) * time.Second,
		MaxDelay:   time.Duration(cfg.Retry.MaxDelaySeconds) * time.Second,
		Jitter:     true,
	}
}
