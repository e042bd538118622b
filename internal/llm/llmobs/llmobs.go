package llmobs

import (
	"context"
	"time"

	"stock-trader/internal/analysis"
	"stock-trader/internal/interfaces"
	"stock-trader/internal/logger"
	"stock-trader/internal/trace"
	"stock-trader/internal/types"
)

// observableAnalyst wraps a MarketAnalyst with observability (logging & tracing)
type observableAnalyst struct {
	analyst interfaces.MarketAnalyst
}

// Compile-time interface check
var _ interfaces.MarketAnalyst = (*observableAnalyst)(nil)

// Wrap wraps an analyst with observability middleware
func Wrap(analyst interfaces.MarketAnalyst) interfaces.MarketAnalyst {
	return &observableAnalyst{analyst: analyst}
}

func (o *observableAnalyst) AnalyzeMarket(ctx context.Context, date time.Time, news []types.News) (analysis.MarketAnalysis, error) {
	ctx, span := trace.StartSpan(ctx, "llm.AnalyzeMarket")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting market analysis",
		"date", date.Format("2006-01-02"),
		"news", len(news),
	)

	result, err := o.analyst.AnalyzeMarket(ctx, date, news)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get market analysis", err,
			"date", date.Format("2006-01-02"),
			"news", len(news),
		)
		return analysis.MarketAnalysis{}, err
	}

	logger.InfoSkip(ctx, 1, "Market analysis received",
		"date", date.Format("2006-01-02"),
		"score", result.SentimentScore(),
		"sentiment", string(result.DeterminedMarketSentiment()),
		"strategy", string(result.RecommendedStrategy()),
		"cited", len(result.CitedNewsIDs()),
	)
	return result, nil
}
