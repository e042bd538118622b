package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-trader/internal/analysis"
	"stock-trader/internal/interfaces"
	"stock-trader/internal/logger"
	"stock-trader/internal/tradelog"
)

var ErrNoNews = errors.New("no news stored for date")

// Journal receives evaluated signals and analyses. *tradelog.Journal
// implements it.
type Journal interface {
	AppendSignal(e tradelog.SignalEntry) error
	AppendAnalysis(e tradelog.AnalysisEntry) error
}

type analysisStore interface {
	interfaces.NewsStore
	interfaces.AnalysisStore
}

type AnalysisService struct {
	store   analysisStore
	analyst interfaces.MarketAnalyst
	journal Journal
}

func NewAnalysisService(store analysisStore, analyst interfaces.MarketAnalyst, journal Journal) *AnalysisService {
	return &AnalysisService{store: store, analyst: analyst, journal: journal}
}

// Execute analyses the news stored for date's calendar day and saves the
// result.
func (s *AnalysisService) Execute(ctx context.Context, date time.Time) (analysis.MarketAnalysis, error) {
	news, err := s.store.NewsByDate(ctx, date)
	if err != nil {
		return analysis.MarketAnalysis{}, fmt.Errorf("load news: %w", err)
	}
	if len(news) == 0 {
		return analysis.MarketAnalysis{}, fmt.Errorf("%w: %s", ErrNoNews, date.Format("2006-01-02"))
	}

	a, err := s.analyst.AnalyzeMarket(ctx, date, news)
	if err != nil {
		return analysis.MarketAnalysis{}, fmt.Errorf("analyze market: %w", err)
	}
	if err := s.store.SaveMarketAnalysis(ctx, a); err != nil {
		return analysis.MarketAnalysis{}, err
	}

	sentiment := string(a.DeterminedMarketSentiment())
	strategy := string(a.RecommendedStrategy())
	logger.Analysis(ctx, a.Date().Format("2006-01-02"), sentiment, strategy, a.SentimentScore(),
		"news", len(news), "summary", a.Summary())

	if s.journal != nil {
		err := s.journal.AppendAnalysis(tradelog.AnalysisEntry{
			Date:         a.Date().Format("2006-01-02"),
			Score:        a.SentimentScore(),
			Sentiment:    sentiment,
			Strategy:     strategy,
			Summary:      a.Summary(),
			NewsCount:    len(news),
			CitedNewsIDs: a.CitedNewsIDs(),
		})
		if err != nil {
			logger.Warn(ctx, "Failed to journal analysis", "error", err)
		}
	}
	return a, nil
}
