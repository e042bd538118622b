package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stock-trader/internal/analysis"
	"stock-trader/internal/interfaces"
	"stock-trader/internal/storage"
	"stock-trader/internal/types"
)

type Store struct {
	db *sql.DB
}

var _ interfaces.Repository = (*Store)(nil)

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS ohlcv_candles (
    symbol TEXT NOT NULL,
    market TEXT NOT NULL,
    timeframe TEXT NOT NULL,
    ts INTEGER NOT NULL,
    open REAL NOT NULL,
    high REAL NOT NULL,
    low REAL NOT NULL,
    close REAL NOT NULL,
    volume REAL NOT NULL,
    PRIMARY KEY (symbol, timeframe, ts)
);

CREATE TABLE IF NOT EXISTS news (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    published_at INTEGER NOT NULL,
    source TEXT NOT NULL,
    url TEXT NOT NULL,
    related_stocks TEXT NOT NULL DEFAULT '[]',
    related_sectors TEXT NOT NULL DEFAULT '[]',
    sentiment_score REAL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_news_published_at ON news(published_at);

CREATE TABLE IF NOT EXISTS market_analysis (
    date TEXT PRIMARY KEY,
    sentiment_score REAL NOT NULL,
    market_sentiment TEXT NOT NULL,
    trading_strategy TEXT NOT NULL,
    summary TEXT NOT NULL,
    payload TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Store) PutCandles(ctx context.Context, candles []types.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO ohlcv_candles (symbol, market, timeframe, ts, open, high, low, close, volume)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, c.Symbol, string(c.Market), string(c.Interval), c.Time.Unix(),
			c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			return fmt.Errorf("upsert candle %s %s: %w", c.Symbol, c.Time.Format(time.DateOnly), err)
		}
	}
	return tx.Commit()
}

func (s *Store) RecentCandles(ctx context.Context, symbol string, interval types.Interval, n int) ([]types.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT symbol, market, timeframe, ts, open, high, low, close, volume
FROM ohlcv_candles
WHERE symbol = ? AND timeframe = ?
ORDER BY ts DESC
LIMIT ?`, symbol, string(interval), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Candle
	for rows.Next() {
		var (
			c      types.Candle
			market string
			tf     string
			ts     int64
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
	if len(news) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO news (id, title, content, published_at, source, url, related_stocks, related_sectors, sentiment_score)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, n := range news {
		res, err := stmt.ExecContext(ctx, n.ID, n.Title, n.Content, n.PublishedAt.Unix(), string(n.Source), n.URL,
			storage.EncodeList(n.RelatedStocks), storage.EncodeList(n.RelatedSectors), n.SentimentScore)
		if err != nil {
			return 0, fmt.Errorf("insert news %s: %w", n.ID, err)
		}
		if affected, _ := res.RowsAffected(); affected > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// NewsByDate returns news published on date's calendar day in date's
// location, oldest first.
func (s *Store) NewsByDate(ctx context.Context, date time.Time) ([]types.News, error) {
	start, end := storage.DayBounds(date)
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, content, published_at, source, url, related_stocks, related_sectors, sentiment_score
FROM news
WHERE published_at >= ? AND published_at < ?
ORDER BY published_at ASC, id ASC`, start, end)
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
			score           sql.NullFloat64
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &ts, &source, &n.URL, &stocks, &sectors, &score); err != nil {
			return nil, err
		}
		n.PublishedAt = time.Unix(ts, 0).In(date.Location())
		n.Source = types.NewsSource(source)
		n.RelatedStocks = storage.DecodeList(stocks)
		n.RelatedSectors = storage.DecodeList(sectors)
		if score.Valid {
			v := score.Float64
			n.SentimentScore = &v
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) SaveMarketAnalysis(ctx context.Context, a analysis.MarketAnalysis) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO market_analysis (date, sentiment_score, market_sentiment, trading_strategy, summary, payload)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(date) DO UPDATE SET
    sentiment_score = excluded.sentiment_score,
    market_sentiment = excluded.market_sentiment,
    trading_strategy = excluded.trading_strategy,
    summary = excluded.summary,
    payload = excluded.payload,
    updated_at = CURRENT_TIMESTAMP`,
		storage.DateKey(a.Date()), a.SentimentScore(), string(a.DeterminedMarketSentiment()),
		string(a.RecommendedStrategy()), a.Summary(), string(payload))
	if err != nil {
		return fmt.Errorf("save market analysis: %w", err)
	}
	return nil
}

func (s *Store) LatestMarketAnalysis(ctx context.Context) (analysis.MarketAnalysis, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM market_analysis ORDER BY date DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
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
