package interfaces

import (
	"context"
	"time"

	"stock-trader/internal/analysis"
	"stock-trader/internal/types"
)

type CandleStore interface {
	// PutCandles upserts candles keyed by symbol, interval and time.
	PutCandles(ctx context.Context, candles []types.Candle) error
	// RecentCandles returns the last n candles, oldest first.
	RecentCandles(ctx context.Context, symbol string, interval types.Interval, n int) ([]types.Candle, error)
}

type NewsStore interface {
	// PutNews inserts news, skipping ids already stored, and returns the
	// number of new rows.
	PutNews(ctx context.Context, news []types.News) (int, error)
	NewsByDate(ctx context.Context, date time.Time) ([]types.News, error)
}

type AnalysisStore interface {
	// SaveMarketAnalysis replaces any analysis stored for the same date.
	SaveMarketAnalysis(ctx context.Context, a analysis.MarketAnalysis) error
	// LatestMarketAnalysis returns ok=false when nothing is stored.
	LatestMarketAnalysis(ctx context.Context) (a analysis.MarketAnalysis, ok bool, err error)
}

type Repository interface {
	CandleStore
	NewsStore
	AnalysisStore
	Close() error
}
