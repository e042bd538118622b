package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kelseyhightower/envconfig"
)

type PoolConfig struct {
	MaxConns          int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	MaxConnIdleTime   time.Duration `envconfig:"DB_MAX_CONN_IDLE_TIME" default:"5m"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTHCHECK_PERIOD" default:"30s"`
}

// PoolConfigFromEnv reads pool settings from DB_* variables and clamps them
// to a usable range.
func PoolConfigFromEnv() (PoolConfig, error) {
	var cfg PoolConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return PoolConfig{}, fmt.Errorf("pool config: %w", err)
	}
	if cfg.MaxConns < 1 {
		cfg.MaxConns = 1
	}
	if cfg.MinConns < 0 {
		cfg.MinConns = 0
	}
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}
	return cfg, nil
}

func NewPool(ctx context.Context, databaseURL string, cfg PoolConfig) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists ohlcv_candles (
			symbol text not null,
			market text not null,
			timeframe text not null,
			ts bigint not null,
			open double precision not null,
			high double precision not null,
			low double precision not null,
			close double precision not null,
			volume double precision not null,
			primary key (symbol, timeframe, ts)
		);`,
		`create table if not exists news (
			id text primary key,
			title text not null,
			content text not null default '',
			published_at bigint not null,
			source text not null,
			url text not null,
			related_stocks jsonb not null default '[]'::jsonb,
			related_sectors jsonb not null default '[]'::jsonb,
			sentiment_score double precision null,
			created_at timestamptz not null default now()
		);`,
		`create index if not exists news_published_at_idx on news(published_at);`,
		`create table if not exists market_analysis (
			date text primary key,
			sentiment_score double precision not null,
			market_sentiment text not null,
			trading_strategy text not null,
			summary text not null,
			payload jsonb not null,
			updated_at timestamptz not null default now()
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
