package market

import (
	"errors"
	"fmt"
	"time"

	"stock-trader/internal/interfaces"
	"stock-trader/internal/market/marketobs"
	"stock-trader/internal/types"
)

var ErrUnsupportedMarket = errors.New("unsupported market")

// Factory routes each market to its data source.
type Factory struct {
	sources map[types.MarketType]interfaces.MarketDataSource
}

type FactoryConfig struct {
	UpbitBaseURL string
	Timeout      time.Duration
}

// NewFactory wires Yahoo for stock markets and Upbit for crypto, each
// wrapped with observability.
func NewFactory(cfg FactoryConfig) *Factory {
	yahoo := marketobs.Wrap("yahoo", NewYahooSource())
	upbit := marketobs.Wrap("upbit", NewUpbitSource(cfg.UpbitBaseURL, cfg.Timeout))
	return NewFactoryWith(map[types.MarketType]interfaces.MarketDataSource{
		types.KOSPI:  yahoo,
		types.KOSDAQ: yahoo,
		types.NASDAQ: yahoo,
		types.NYSE:   yahoo,
		types.UPBIT:  upbit,
	})
}

func NewFactoryWith(sources map[types.MarketType]interfaces.MarketDataSource) *Factory {
	return &Factory{sources: sources}
}

func (f *Factory) SourceFor(market types.MarketType) (interfaces.MarketDataSource, error) {
	src, ok := f.sources[market]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMarket, market)
	}
	return src, nil
}
