package marketobs

import (
	"context"

	"stock-trader/internal/interfaces"
	"stock-trader/internal/logger"
	"stock-trader/internal/trace"
	"stock-trader/internal/types"
)

// observableSource wraps a MarketDataSource with observability (logging & tracing)
type observableSource struct {
	name   string
	source interfaces.MarketDataSource
}

// Compile-time interface check
var _ interfaces.MarketDataSource = (*observableSource)(nil)

// Wrap wraps a market data source with observability middleware
func Wrap(name string, source interfaces.MarketDataSource) interfaces.MarketDataSource {
	return &observableSource{name: name, source: source}
}

func (o *observableSource) CandleHistory(ctx context.Context, symbol types.Symbol, interval types.Interval, count int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "market.CandleHistory")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching candle history",
		"source", o.name,
		"symbol", symbol.String(),
		"interval", string(interval),
		"count", count,
	)

	candles, err := o.source.CandleHistory(ctx, symbol, interval, count)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candle history", err,
			"source", o.name,
			"symbol", symbol.String(),
		)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candle history fetched",
		"source", o.name,
		"symbol", symbol.String(),
		"rows", len(candles),
	)
	return candles, nil
}
