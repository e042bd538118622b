package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stock-trader/internal/analysis"
	"stock-trader/internal/interfaces"
	"stock-trader/internal/storage"
	"stock-trader/internal/types"
)

// Store is the Postgres repository. It owns the pool and closes it.
type Store struct {
	pool *pgxpool.Pool
}

var _ interfaces.Repository = (*Store)(nil)

// Open connects, migrates and returns a ready store.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := PoolConfigFromEnv()
	if err != nil {
		return nil, err
	}
	pool, err := NewPool(ctx, databaseURL, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) PutCandles(ctx context.Context, candles []types.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range candles {
		batch.Queue(`
			insert into ohlcv_candles(symbol, market, timeframe, ts, open, high, low, close, volume)
			values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			on conflict (symbol, timeframe, ts) do update set
				market=excluded.market, open=excluded.open, high=excluded.high,
				low=excluded.low, close=excluded.close, volume=excluded.volume
		`, c.Symbol, string(c.Market), string(c.Interval), c.Time.Unix(), c.Open, c.High, c.Low, c.Close, c.Volume)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert candles: %w", err)
	}
	return nil
}

func (s *Store) RecentCandles(ctx context.Context, symbol string, interval types.Interval, n int) ([]types.Candle, error) {
	rows, err := s.pool.Query(ctx, `
		select symbol, market, timeframe, ts, open, high, low, close, volume
		from ohlcv_candles
		where symbol = $1 and timeframe = $2
		order by ts desc
		limit $3
	`, symbol, string(interval), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Candle
	for rows.Next() {
		var (
			c          types.Candle
			market, tf string
			ts         int64
		)
		if err := rows.Scan(&c.Symbol, &market, &tf, &ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		c.Market = types.MarketType(market)
		c.Interval = types.Interval(tf)
		c.Time = time.Unix(ts, 0).UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Store) PutNews(ctx context.Context, news []types.News) (int, error) {
	inserted := 0
	for _, n := range news {
		tag, err := s.pool.Exec(ctx, `
			insert into news(id, title, content, published_at, source, url, related_stocks, related_sectors, sentiment_score)
			values ($1,$2,$3,$4,$5,$6,$7::jsonb,$8::jsonb,$9)
			on conflict (id) do nothing
		`, n.ID, n.Title, n.Content, n.PublishedAt.Unix(), string(n.Source), n.URL,
			storage.EncodeList(n.RelatedStocks), storage.EncodeList(n.RelatedSectors), n.SentimentScore)
		if err != nil {
			return inserted, fmt.Errorf("insert news %s: %w", n.ID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *Store) NewsByDate(ctx context.Context, date time.Time) ([]types.News, error) {
	start, end := storage.DayBounds(date)
	rows, err := s.pool.Query(ctx, `
		select id, title, content, published_at, source, url, related_stocks::text, related_sectors::text, sentiment_score
		from news
		where published_at >= $1 and published_at < $2
		order by published_at asc, id asc
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.News
	for rows.Next() {
		var (
			n               types.News
			ts              int64
			source          string
			stocks, sectors string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &ts, &source, &n.URL, &stocks, &sectors, &n.SentimentScore); err != nil {
			return nil, err
		}
		n.PublishedAt = time.Unix(ts, 0).In(date.Location())
		n.Source = types.NewsSource(source)
		n.RelatedStocks = storage.DecodeList(stocks)
		n.RelatedSectors = storage.DecodeList(sectors)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) SaveMarketAnalysis(ctx context.Context, a analysis.MarketAnalysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		insert into market_analysis(date, sentiment_score, market_sentiment, trading_strategy, summary, payload)
		values ($1,$2,$3,$4,$5,$6::jsonb)
		on conflict (date) do update set
			sentiment_score=excluded.sentiment_score,
			market_sentiment=excluded.market_sentiment,
			trading_strategy=excluded.trading_strategy,
			summary=excluded.summary,
			payload=excluded.payload,
			updated_at=now()
	`, storage.DateKey(a.Date()), a.SentimentScore(), string(a.DeterminedMarketSentiment()),
		string(a.RecommendedStrategy()), a.Summary(), string(payload))
	if err != nil {
		return fmt.Errorf("save market analysis: %w", err)
	}
	return nil
}

func (s *Store) LatestMarketAnalysis(ctx context.Context) (analysis.MarketAnalysis, bool, error) {
	var payload string
	err := s.pool.QueryRow(ctx, `select payload::text from market_analysis order by date desc limit 1`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return analysis.MarketAnalysis{}, false, nil
	}
	if err != nil {
		return analysis.MarketAnalysis{}, false, err
	}
	var a analysis.MarketAnalysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return analysis.MarketAnalysis{}, false, fmt.Errorf("decode market analysis: %w", err)
	}
	return a, true, nil
}
