package ta

import "math"

// SMA returns the mean of the last n closes, or NaN when fewer than n exist.
func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// EMASeries returns the recursive exponential moving average for every
// observation, seeded with the first price: ema[0]=p[0], ema[t]=a*p[t]+(1-a)*ema[t-1]
// with a = 2/(span+1).
func EMASeries(closes []float64, span int) []float64 {
	if len(closes) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(closes))
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		out[i] = alpha*closes[i] + (1-alpha)*out[i-1]
	}
	return out
}

// EMA returns the latest value of EMASeries, or NaN for an empty series.
func EMA(closes []float64, span int) float64 {
	s := EMASeries(closes, span)
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

// RSI returns the latest relative strength index for the given period.
//
// Gains and losses are smoothed with an exponentially weighted mean using
// alpha = 1/period (center of mass period-1) and bias-corrected weights, and a
// value is only produced once period deltas have been observed. The result is
// NaN when the history is too short or when the series never moved.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return math.NaN()
	}
	decay := 1.0 - 1.0/float64(period)

	var gainNum, lossNum, den float64
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		gainNum = gainNum*decay + gain
		lossNum = lossNum*decay + loss
		den = den*decay + 1
	}

	avgGain := gainNum / den
	avgLoss := lossNum / den
	if avgLoss == 0 {
		if avgGain == 0 {
			return math.NaN()
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
