// Package service orchestrates collection, analysis and signal evaluation
// on top of the adapters and the repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"stock-trader/internal/interfaces"
	"stock-trader/internal/logger"
	"stock-trader/internal/market"
	"stock-trader/internal/scheduler"
	"stock-trader/internal/types"
)

type SourceResolver interface {
	SourceFor(m types.MarketType) (interfaces.MarketDataSource, error)
}

// CollectResult summarises one market collection run.
type CollectResult struct {
	SuccessCount  int      `json:"success_count"`
	FailedCount   int      `json:"failed_count"`
	FailedSymbols []string `json:"failed_symbols"`
	TotalRows     int      `json:"total_rows"`
}

type MarketDataService struct {
	sources     SourceResolver
	store       interfaces.CandleStore
	limiter     *scheduler.RateLimiter
	retry       scheduler.RetryPolicy
	concurrency int
}

type MarketDataConfig struct {
	Concurrency int
	Limiter     *scheduler.RateLimiter
	Retry       scheduler.RetryPolicy
}

func NewMarketDataService(sources SourceResolver, store interfaces.CandleStore, cfg MarketDataConfig) *MarketDataService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &MarketDataService{
		sources:     sources,
		store:       store,
		limiter:     cfg.Limiter,
		retry:       cfg.Retry,
		concurrency: cfg.Concurrency,
	}
}

// Execute collects and stores candles for every symbol. A failing symbol is
// retried per the policy and then counted as failed; it never aborts the
// others.
func (s *MarketDataService) Execute(ctx context.Context, symbols []types.Symbol, interval types.Interval, count int) CollectResult {
	op := logger.StartOperation(ctx, "service.CollectMarketData", "symbols", len(symbols), "interval", string(interval))
	ctx = op.GetContext()

	var (
		mu     sync.Mutex
		result = CollectResult{FailedSymbols: []string{}}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, sym := range symbols {
		g.Go(func() error {
			rows, err := s.collectOne(gctx, sym, interval, count)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.ErrorWithErr(gctx, "Market data collection failed", err, "symbol", sym.String())
				result.FailedCount++
				result.FailedSymbols = append(result.FailedSymbols, sym.Code)
				return nil
			}
			result.SuccessCount++
			result.TotalRows += rows
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.FailedSymbols)
	logger.Collection(ctx, "market", result.SuccessCount, result.FailedCount,
		"rows", result.TotalRows, "failed_symbols", result.FailedSymbols)
	op.End("success", result.SuccessCount, "failed", result.FailedCount)
	return result
}

func (s *MarketDataService) collectOne(ctx context.Context, sym types.Symbol, interval types.Interval, count int) (int, error) {
	src, err := s.sources.SourceFor(sym.Market)
	if err != nil {
		return 0, err
	}

	var rows int
	err = scheduler.Retry(ctx, s.retry, "collect "+sym.String(), func(ctx context.Context) error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		candles, err := src.CandleHistory(ctx, sym, interval, count)
		if err != nil {
			if errors.Is(err, market.ErrUnsupportedMarket) {
				return fmt.Errorf("%w: %w", scheduler.ErrPermanent, err)
			}
			return err
		}
		if err := s.store.PutCandles(ctx, candles); err != nil {
			return fmt.Errorf("store candles: %w", err)
		}
		rows = len(candles)
		return nil
	})
	return rows, err
}
