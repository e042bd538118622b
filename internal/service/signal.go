package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-trader/internal/analysis"
	"stock-trader/internal/interfaces"
	"stock-trader/internal/logger"
	"stock-trader/internal/strategy"
	"stock-trader/internal/ta"
	"stock-trader/internal/tradelog"
	"stock-trader/internal/types"
)

var ErrNoCandles = errors.New("no candles stored")

// Signal is the technical entry condition evaluated for one symbol, shown
// next to the latest news regime. The two are reported side by side and
// never combined.
type Signal struct {
	Symbol    types.Symbol             `json:"symbol"`
	Condition string                   `json:"condition"`
	Satisfied bool                     `json:"satisfied"`
	Close     float64                  `json:"close"`
	Time      time.Time                `json:"time"`
	Context   strategy.MarketContext   `json:"context"`
	Regime    analysis.MarketSentiment `json:"regime,omitempty"`
	Strategy  analysis.TradingStrategy `json:"strategy,omitempty"`
}

type signalStore interface {
	interfaces.CandleStore
	interfaces.AnalysisStore
}

type SignalService struct {
	store    signalStore
	cond     strategy.Condition
	interval types.Interval
	history  int
	journal  Journal
}

func NewSignalService(store signalStore, cond strategy.Condition, interval types.Interval, history int, journal Journal) *SignalService {
	if history <= 0 {
		history = 200
	}
	return &SignalService{store: store, cond: cond, interval: interval, history: history, journal: journal}
}

func (s *SignalService) Evaluate(ctx context.Context, symbol types.Symbol) (Signal, error) {
	candles, err := s.store.RecentCandles(ctx, symbol.Code, s.interval, s.history)
	if err != nil {
		return Signal{}, fmt.Errorf("load candles %s: %w", symbol, err)
	}
	if len(candles) == 0 {
		return Signal{}, fmt.Errorf("%w: %s", ErrNoCandles, symbol)
	}

	mctx := strategy.NewMarketContext(types.Closes(candles))
	last := candles[len(candles)-1]
	sig := Signal{
		Symbol:    symbol,
		Condition: s.cond.String(),
		Satisfied: s.cond.IsSatisfiedBy(mctx),
		Close:     last.Close,
		Time:      last.Time,
		Context:   mctx,
	}

	if a, ok, err := s.store.LatestMarketAnalysis(ctx); err != nil {
		logger.Warn(ctx, "Failed to load latest market analysis", "error", err)
	} else if ok {
		sig.Regime = a.DeterminedMarketSentiment()
		sig.Strategy = a.RecommendedStrategy()
	}

	logger.Signal(ctx, symbol.String(), sig.Condition, sig.Satisfied,
		"close", sig.Close, "regime", string(sig.Regime))

	if s.journal != nil {
		err := s.journal.AppendSignal(tradelog.SignalEntry{
			Symbol:     symbol.Code,
			Market:     string(symbol.Market),
			Condition:  sig.Condition,
			Satisfied:  sig.Satisfied,
			Close:      sig.Close,
			Indicators: Indicators(mctx),
			Regime:     string(sig.Regime),
			Strategy:   string(sig.Strategy),
		})
		if err != nil {
			logger.Warn(ctx, "Failed to journal signal", "error", err, "symbol", symbol.Code)
		}
	}
	return sig, nil
}

// EvaluateAll evaluates every symbol. Failed symbols are skipped and their
// errors joined.
func (s *SignalService) EvaluateAll(ctx context.Context, symbols []types.Symbol) ([]Signal, error) {
	var (
		out  []Signal
		errs []error
	)
	for _, sym := range symbols {
		sig, err := s.Evaluate(ctx, sym)
		if err != nil {
			logger.ErrorWithErr(ctx, "Signal evaluation failed", err, "symbol", sym.String())
			errs = append(errs, err)
			continue
		}
		out = append(out, sig)
	}
	return out, errors.Join(errs...)
}

// Indicators flattens the computed readings of mctx. Undefined RSI periods
// are left out.
func Indicators(mctx strategy.MarketContext) map[string]float64 {
	m := map[string]float64{}
	if sma := mctx.SMA; sma != nil {
		m["sma_20"], m["sma_60"], m["sma_120"] = sma.SMA20, sma.SMA60, sma.SMA120
	}
	if ema := mctx.EMA; ema != nil {
		m["ema_20"], m["ema_60"], m["ema_120"] = ema.EMA20, ema.EMA60, ema.EMA120
	}
	if rsi := mctx.RSI; rsi != nil {
		values := [5]float64{rsi.RSI2, rsi.RSI7, rsi.RSI9, rsi.RSI14, rsi.RSI50}
		for i, p := range ta.RSIPeriods {
			if rsi.Defined(p) {
				m[fmt.Sprintf("rsi_%d", p)] = values[i]
			}
		}
	}
	return m
}
