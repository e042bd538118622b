package interfaces

import (
	"context"

	"stock-trader/internal/types"
)

// MarketDataSource returns at most count candles for symbol, oldest first.
type MarketDataSource interface {
	CandleHistory(ctx context.Context, symbol types.Symbol, interval types.Interval, count int) ([]types.Candle, error)
}
