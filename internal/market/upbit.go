package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"stock-trader/internal/interfaces"
	"stock-trader/internal/types"
)

// Upbit returns at most this many candles per request.
const upbitMaxCount = 200

var kst = time.FixedZone("KST", 9*60*60)

type upbitCandle struct {
	Market            string          `json:"market"`
	CandleDateTimeKST string          `json:"candle_date_time_kst"`
	OpeningPrice      decimal.Decimal `json:"opening_price"`
	HighPrice         decimal.Decimal `json:"high_price"`
	LowPrice          decimal.Decimal `json:"low_price"`
	TradePrice        decimal.Decimal `json:"trade_price"`
	AccTradeVolume    decimal.Decimal `json:"candle_acc_trade_volume"`
}

// UpbitSource reads KRW crypto candles from the Upbit quotation API.
type UpbitSource struct {
	client *resty.Client
}

var _ interfaces.MarketDataSource = (*UpbitSource)(nil)

func NewUpbitSource(baseURL string, timeout time.Duration) *UpbitSource {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	return &UpbitSource{client: client}
}

func upbitPath(interval types.Interval) string {
	switch interval {
	case types.Week:
		return "/v1/candles/weeks"
	case types.Month:
		return "/v1/candles/months"
	default:
		return "/v1/candles/days"
	}
}

func (u *UpbitSource) CandleHistory(ctx context.Context, symbol types.Symbol, interval types.Interval, count int) ([]types.Candle, error) {
	if symbol.Market != types.UPBIT {
		return nil, fmt.Errorf("%w: %s on upbit", ErrUnsupportedMarket, symbol.Market)
	}
	if count <= 0 {
		return nil, nil
	}
	if count > upbitMaxCount {
		count = upbitMaxCount
	}

	resp, err := u.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"market": symbol.Code,
			"count":  strconv.Itoa(count),
		}).
		Get(upbitPath(interval))
	if err != nil {
		return nil, fmt.Errorf("upbit candles %s: %w", symbol.Code, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("upbit API error %d: %s", resp.StatusCode(), resp.String())
	}

	var rows []upbitCandle
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("failed to parse upbit response: %w", err)
	}

	// Upbit returns newest first.
	candles := make([]types.Candle, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		ts, err := time.ParseInLocation("2006-01-02T15:04:05", r.CandleDateTimeKST, kst)
		if err != nil {
			return nil, fmt.Errorf("upbit candle time %q: %w", r.CandleDateTimeKST, err)
		}
		candles = append(candles, types.Candle{
			Symbol:   symbol.Code,
			Market:   types.UPBIT,
			Interval: interval,
			Time:     ts,
			Open:     r.OpeningPrice.InexactFloat64(),
			High:     r.HighPrice.InexactFloat64(),
			Low:      r.LowPrice.InexactFloat64(),
			Close:    r.TradePrice.InexactFloat64(),
			Volume:   r.AccTradeVolume.InexactFloat64(),
		})
	}
	return candles, nil
}
