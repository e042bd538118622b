package ta

import "math"

// Window sizes used by the indicator engine.
var (
	SMAWindows = [3]int{20, 60, 120}
	EMASpans   = [3]int{20, 60, 120}
	RSIPeriods = [5]int{2, 7, 9, 14, 50}
)

// SMAResult holds the 20/60/120 simple moving averages of a close series.
type SMAResult struct {
	SMA20  float64 `json:"sma_20"`
	SMA60  float64 `json:"sma_60"`
	SMA120 float64 `json:"sma_120"`
}

// IsATrendMarket reports whether the short average sits above the long one.
func (r SMAResult) IsATrendMarket() bool {
	return r.SMA20 > r.SMA120
}

// Valid reports whether every window had enough history.
func (r SMAResult) Valid() bool {
	return !math.IsNaN(r.SMA20) && !math.IsNaN(r.SMA60) && !math.IsNaN(r.SMA120)
}

// EMAResult holds the 20/60/120 exponential moving averages of a close series.
type EMAResult struct {
	EMA20  float64 `json:"ema_20"`
	EMA60  float64 `json:"ema_60"`
	EMA120 float64 `json:"ema_120"`
}

// IsPerfectOrder reports strict short > medium > long ordering.
func (r EMAResult) IsPerfectOrder() bool {
	return r.EMA20 > r.EMA60 && r.EMA60 > r.EMA120
}

func (r EMAResult) Valid() bool {
	return !math.IsNaN(r.EMA20) && !math.IsNaN(r.EMA60) && !math.IsNaN(r.EMA120)
}

// RSIResult holds multi-period RSI readings in [0,100].
//
// A period without enough history reports 0.0, which is indistinguishable
// from a genuine reading at the lower bound; use Defined to tell them apart.
type RSIResult struct {
	RSI2  float64 `json:"rsi_2"`
	RSI7  float64 `json:"rsi_7"`
	RSI9  float64 `json:"rsi_9"`
	RSI14 float64 `json:"rsi_14"`
	RSI50 float64 `json:"rsi_50"`

	// undefined is indexed like RSIPeriods. The zero value marks every
	// period as defined so literal results behave as plain readings.
	undefined [5]bool
}

// Defined reports whether the reading for period was computed from enough
// history. Unknown periods are never defined.
func (r RSIResult) Defined(period int) bool {
	for i, p := range RSIPeriods {
		if p == period {
			return !r.undefined[i]
		}
	}
	return false
}

// FastCrossOverSlow reports RSI14 < RSI9.
func (r RSIResult) FastCrossOverSlow() bool {
	if !r.Defined(9) || !r.Defined(14) {
		return false
	}
	return r.RSI14 < r.RSI9
}

// IsRSIOversold reports RSI14 below threshold.
func (r RSIResult) IsRSIOversold(threshold float64) bool {
	return r.Defined(14) && r.RSI14 < threshold
}

// IsRSIOverbought reports RSI14 above threshold.
func (r RSIResult) IsRSIOverbought(threshold float64) bool {
	return r.Defined(14) && r.RSI14 > threshold
}

// HasTheStockDroppedSharply reports RSI2 below threshold.
func (r RSIResult) HasTheStockDroppedSharply(threshold float64) bool {
	return r.Defined(2) && r.RSI2 < threshold
}

// ComputeSMA computes the trailing simple moving averages. Windows longer
// than the series are NaN.
func ComputeSMA(prices []float64) SMAResult {
	return SMAResult{
		SMA20:  SMA(prices, SMAWindows[0]),
		SMA60:  SMA(prices, SMAWindows[1]),
		SMA120: SMA(prices, SMAWindows[2]),
	}
}

// ComputeEMA computes the latest recursive EMA for each span. Input must be
// in chronological order.
func ComputeEMA(prices []float64) EMAResult {
	return EMAResult{
		EMA20:  EMA(prices, EMASpans[0]),
		EMA60:  EMA(prices, EMASpans[1]),
		EMA120: EMA(prices, EMASpans[2]),
	}
}

// ComputeRSI computes RSI for every period in RSIPeriods. Undefined readings
// are reported as 0.0 and flagged through Defined.
func ComputeRSI(prices []float64) RSIResult {
	var vals [5]float64
	var res RSIResult
	for i, p := range RSIPeriods {
		v := RSI(prices, p)
		if math.IsNaN(v) {
			res.undefined[i] = true
			v = 0.0
		}
		vals[i] = v
	}
	res.RSI2, res.RSI7, res.RSI9, res.RSI14, res.RSI50 = vals[0], vals[1], vals[2], vals[3], vals[4]
	return res
}
