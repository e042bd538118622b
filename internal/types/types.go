package types

import (
	"fmt"
	"strings"
	"time"
)

type MarketType string

const (
	KOSPI  MarketType = "KOSPI"
	KOSDAQ MarketType = "KOSDAQ"
	NASDAQ MarketType = "NASDAQ"
	NYSE   MarketType = "NYSE"
	UPBIT  MarketType = "UPBIT"
)

// ParseMarketType accepts a market name in any case.
func ParseMarketType(s string) (MarketType, error) {
	switch m := MarketType(strings.ToUpper(strings.TrimSpace(s))); m {
	case KOSPI, KOSDAQ, NASDAQ, NYSE, UPBIT:
		return m, nil
	}
	return "", fmt.Errorf("unknown market type %q", s)
}

type Interval string

const (
	Day   Interval = "DAY"
	Week  Interval = "WEEK"
	Month Interval = "MONTH"
)

func ParseInterval(s string) (Interval, error) {
	switch i := Interval(strings.ToUpper(strings.TrimSpace(s))); i {
	case Day, Week, Month:
		return i, nil
	}
	return "", fmt.Errorf("unknown interval %q", s)
}

// Symbol identifies a tradable instrument, e.g. {"005930", KOSPI} or
// {"KRW-BTC", UPBIT}.
type Symbol struct {
	Code   string     `json:"code" yaml:"code"`
	Market MarketType `json:"market" yaml:"market"`
}

func (s Symbol) String() string {
	return string(s.Market) + ":" + s.Code
}

// Candle is one OHLCV bar. Time is the bar's opening time.
type Candle struct {
	Symbol   string     `json:"symbol"`
	Market   MarketType `json:"market"`
	Interval Interval   `json:"interval"`
	Time     time.Time  `json:"time"`
	Open     float64    `json:"open"`
	High     float64    `json:"high"`
	Low      float64    `json:"low"`
	Close    float64    `json:"close"`
	Volume   float64    `json:"volume"`
}

// Closes extracts close prices in the given order.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

type NewsSource string

const (
	MKStock   NewsSource = "MK_STOCK"
	HKFinance NewsSource = "HK_FINANCE"
)

// News is one collected article. ID is the md5 hex digest of URL.
type News struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	PublishedAt    time.Time  `json:"published_at"`
	Source         NewsSource `json:"source"`
	URL            string     `json:"url"`
	RelatedStocks  []string   `json:"related_stocks,omitempty"`
	RelatedSectors []string   `json:"related_sectors,omitempty"`
	SentimentScore *float64   `json:"sentiment_score,omitempty"`
}
