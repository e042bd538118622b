package noop

import (
	"context"
	"time"

	"stock-trader/internal/analysis"
	"stock-trader/internal/interfaces"
	"stock-trader/internal/logger"
	"stock-trader/internal/types"
)

// Analyst is used when no LLM is configured. It always reports a neutral
// market.
type Analyst struct{}

var _ interfaces.MarketAnalyst = Analyst{}

func NewAnalyst() Analyst {
	return Analyst{}
}

func (Analyst) AnalyzeMarket(ctx context.Context, date time.Time, news []types.News) (analysis.MarketAnalysis, error) {
	logger.Debug(ctx, "Noop analyst called - always neutral", "news", len(news))

	ids := make([]string, 0, len(news))
	for _, n := range news {
		ids = append(ids, n.ID)
	}
	return analysis.NewMarketAnalysis(date, 0, "noop_analyst_fallback", nil, []string{"No LLM configured"}, "", ids), nil
}
