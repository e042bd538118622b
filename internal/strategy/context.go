package strategy

import "stock-trader/internal/ta"

// MarketContext bundles the indicator results a condition is evaluated
// against. A nil field means the indicator was not computed.
type MarketContext struct {
	SMA *ta.SMAResult `json:"sma,omitempty"`
	EMA *ta.EMAResult `json:"ema,omitempty"`
	RSI *ta.RSIResult `json:"rsi,omitempty"`
}

// NewMarketContext computes every indicator from closes (oldest first).
// SMA and EMA results with undefined windows are left out so that conditions
// on them report false instead of comparing NaN.
func NewMarketContext(closes []float64) MarketContext {
	var ctx MarketContext
	if len(closes) == 0 {
		return ctx
	}
	if sma := ta.ComputeSMA(closes); sma.Valid() {
		ctx.SMA = &sma
	}
	if ema := ta.ComputeEMA(closes); ema.Valid() {
		ctx.EMA = &ema
	}
	rsi := ta.ComputeRSI(closes)
	ctx.RSI = &rsi
	return ctx
}
