package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"stock-trader/internal/strategy"
	"stock-trader/internal/types"
)

type NewsSourceConfig struct {
	Name            types.NewsSource `yaml:"name"`
	ContentSelector string           `yaml:"content_selector"`
	Feeds           []string         `yaml:"feeds"`
}

type Config struct {
	Timezone string `yaml:"timezone"`
	Storage  struct {
		Driver     string `yaml:"driver"` // sqlite or postgres
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Market struct {
		Interval           types.Interval `yaml:"interval"`
		HistoryCount       int            `yaml:"history_count"`
		Concurrency        int            `yaml:"concurrency"`
		RateLimitPerMinute int            `yaml:"rate_limit_per_minute"`
		UpbitBaseURL       string         `yaml:"upbit_base_url"`
		Universe           []types.Symbol `yaml:"universe"`
	} `yaml:"market"`
	News struct {
		Sources            []NewsSourceConfig `yaml:"sources"`
		TodayOnly          bool               `yaml:"today_only"`
		TimeoutSeconds     int                `yaml:"timeout_seconds"`
		RateLimitPerMinute int                `yaml:"rate_limit_per_minute"`
	} `yaml:"news"`
	LLM struct {
		Provider    string  `yaml:"provider"` // OPENAI, CLAUDE or NOOP
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"base_url"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
		MaxNews     int     `yaml:"max_news"`
	} `yaml:"llm"`
	Strategy struct {
		RSIOversoldLimit   *float64 `yaml:"rsi_oversold_limit"`
		RSIOverboughtLimit *float64 `yaml:"rsi_overbought_limit"`
		SharpDropLimit     *float64 `yaml:"sharp_drop_limit"`
		EntryCondition     string   `yaml:"entry_condition"`
	} `yaml:"strategy"`
	Schedule struct {
		MarketCollectAt string `yaml:"market_collect_at"` // HH:MM
		NewsCollectAt   string `yaml:"news_collect_at"`
		PollSeconds     int    `yaml:"poll_seconds"`
	} `yaml:"schedule"`
	Retry struct {
		MaxRetries      int `yaml:"max_retries"`
		MinDelaySeconds int `yaml:"min_delay_seconds"`
		MaxDelaySeconds int `yaml:"max_delay_seconds"`
	} `yaml:"retry"`
	Journal struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"` // older files are gzipped; 0 keeps them as is
	} `yaml:"journal"`
}

// Secrets are read from the environment (optionally via .env) and never
// from config.yaml.
type Secrets struct {
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
}

const DefaultEntryCondition = "trend_and_perfect_order AND rsi_fast_cross_over_slow"

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/stock_data.db"
	}
	if c.Market.Interval == "" {
		c.Market.Interval = types.Day
	}
	if c.Market.HistoryCount == 0 {
		c.Market.HistoryCount = 200
	}
	if c.Market.Concurrency == 0 {
		c.Market.Concurrency = 4
	}
	if c.Market.RateLimitPerMinute == 0 {
		c.Market.RateLimitPerMinute = 30
	}
	if c.Market.UpbitBaseURL == "" {
		c.Market.UpbitBaseURL = "https://api.upbit.com"
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 10
	}
	if c.News.RateLimitPerMinute == 0 {
		c.News.RateLimitPerMinute = 5
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "OPENAI"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2048
	}
	if c.LLM.MaxNews == 0 {
		c.LLM.MaxNews = 50
	}
	if c.Strategy.EntryCondition == "" {
		c.Strategy.EntryCondition = DefaultEntryCondition
	}
	if c.Schedule.MarketCollectAt == "" {
		c.Schedule.MarketCollectAt = "16:00"
	}
	if c.Schedule.NewsCollectAt == "" {
		c.Schedule.NewsCollectAt = "08:00"
	}
	if c.Schedule.PollSeconds == 0 {
		c.Schedule.PollSeconds = 30
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 3
	}
	if c.Retry.MinDelaySeconds == 0 {
		c.Retry.MinDelaySeconds = 60
	}
	if c.Retry.MaxDelaySeconds == 0 {
		c.Retry.MaxDelaySeconds = 3600
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs"
	}
}

func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "postgres" {
		return fmt.Errorf("invalid storage.driver '%s': must be 'sqlite' or 'postgres'", c.Storage.Driver)
	}
	if _, err := types.ParseInterval(string(c.Market.Interval)); err != nil {
		return fmt.Errorf("market.interval: %w", err)
	}
	if c.Market.HistoryCount < 0 || c.Market.Concurrency < 0 || c.Market.RateLimitPerMinute < 0 {
		return errors.New("market counts must not be negative")
	}
	for _, s := range c.Market.Universe {
		if s.Code == "" {
			return errors.New("market.universe entries need a code")
		}
		if _, err := types.ParseMarketType(string(s.Market)); err != nil {
			return fmt.Errorf("market.universe %s: %w", s.Code, err)
		}
	}
	for _, src := range c.News.Sources {
		if src.Name != types.MKStock && src.Name != types.HKFinance {
			return fmt.Errorf("invalid news source '%s'", src.Name)
		}
	}
	switch c.LLM.Provider {
	case "OPENAI", "CLAUDE", "NOOP":
	default:
		return fmt.Errorf("llm.provider must be 'OPENAI', 'CLAUDE', or 'NOOP', got '%s'", c.LLM.Provider)
	}
	if _, err := c.StrategyConfig(); err != nil {
		return err
	}
	if _, err := strategy.Parse(c.Strategy.EntryCondition, strategy.DefaultStrategyConfig()); err != nil {
		return fmt.Errorf("strategy.entry_condition: %w", err)
	}
	for name, at := range map[string]string{
		"schedule.market_collect_at": c.Schedule.MarketCollectAt,
		"schedule.news_collect_at":   c.Schedule.NewsCollectAt,
	} {
		if _, err := time.Parse("15:04", at); err != nil {
			return fmt.Errorf("%s must be HH:MM, got '%s'", name, at)
		}
	}
	if c.Retry.MinDelaySeconds > c.Retry.MaxDelaySeconds {
		return fmt.Errorf("retry.min_delay_seconds %d exceeds max_delay_seconds %d", c.Retry.MinDelaySeconds, c.Retry.MaxDelaySeconds)
	}
	return nil
}

// StrategyConfig builds validated strategy thresholds; unset values take
// the defaults.
func (c *Config) StrategyConfig() (strategy.StrategyConfig, error) {
	pick := func(v *float64, def float64) float64 {
		if v == nil {
			return def
		}
		return *v
	}
	return strategy.NewStrategyConfig(
		pick(c.Strategy.RSIOversoldLimit, strategy.DefaultRSIOversoldLimit),
		pick(c.Strategy.RSIOverboughtLimit, strategy.DefaultRSIOverboughtLimit),
		pick(c.Strategy.SharpDropLimit, strategy.DefaultSharpDropLimit),
	)
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// LoadSecrets loads .env when present and reads secrets from the
// environment.
func LoadSecrets() (*Secrets, error) {
	_ = godotenv.Load()

	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, err
	}
	return &s, nil
}
