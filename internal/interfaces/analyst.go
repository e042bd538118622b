package interfaces

import (
	"context"
	"time"

	"stock-trader/internal/analysis"
	"stock-trader/internal/types"
)

// MarketAnalyst turns a day's news into a market analysis.
type MarketAnalyst interface {
	AnalyzeMarket(ctx context.Context, date time.Time, news []types.News) (analysis.MarketAnalysis, error)
}
