package market

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"stock-trader/internal/interfaces"
	"stock-trader/internal/types"
)

// barIterator is satisfied by *chart.Iter.
type barIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

type chartFetcher func(*chart.Params) barIterator

// YahooSource reads daily, weekly and monthly bars from Yahoo Finance for
// Korean and US listings.
type YahooSource struct {
	fetch chartFetcher
	now   func() time.Time
}

var _ interfaces.MarketDataSource = (*YahooSource)(nil)

func NewYahooSource() *YahooSource {
	return &YahooSource{
		fetch: func(p *chart.Params) barIterator { return chart.Get(p) },
		now:   time.Now,
	}
}

// YahooTicker maps a symbol to its Yahoo ticker: KOSPI codes get ".KS",
// KOSDAQ codes ".KQ" and US codes are used as is.
func YahooTicker(s types.Symbol) (string, error) {
	switch s.Market {
	case types.KOSPI:
		return s.Code + ".KS", nil
	case types.KOSDAQ:
		return s.Code + ".KQ", nil
	case types.NASDAQ, types.NYSE:
		return s.Code, nil
	}
	return "", fmt.Errorf("%w: %s on yahoo", ErrUnsupportedMarket, s.Market)
}

// lookback returns a start time that covers count bars of interval,
// allowing for weekends and holidays.
func lookback(end time.Time, interval types.Interval, count int) (time.Time, datetime.Interval) {
	switch interval {
	case types.Week:
		return end.AddDate(0, 0, -7*(count+1)), datetime.Interval("1wk")
	case types.Month:
		return end.AddDate(0, -(count + 1), 0), datetime.Interval("1mo")
	default:
		days := count*7/5 + 14
		return end.AddDate(0, 0, -days), datetime.OneDay
	}
}

func (y *YahooSource) CandleHistory(ctx context.Context, symbol types.Symbol, interval types.Interval, count int) ([]types.Candle, error) {
	if count <= 0 {
		return nil, nil
	}
	ticker, err := YahooTicker(symbol)
	if err != nil {
		return nil, err
	}

	end := y.now()
	start, yInterval := lookback(end, interval, count)
	iter := y.fetch(&chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: yInterval,
	})

	candles := make([]types.Candle, 0, count)
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := iter.Bar()
		if bar == nil || bar.Close.IsZero() {
			continue
		}
		candles = append(candles, types.Candle{
			Symbol:   symbol.Code,
			Market:   symbol.Market,
			Interval: interval,
			Time:     time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:     bar.Open.InexactFloat64(),
			High:     bar.High.InexactFloat64(),
			Low:      bar.Low.InexactFloat64(),
			Close:    bar.Close.InexactFloat64(),
			Volume:   float64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	if len(candles) > count {
		candles = candles[len(candles)-count:]
	}
	return candles, nil
}
