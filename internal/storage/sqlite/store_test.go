package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stock-trader/internal/analysis"
	"stock-trader/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func candle(day int, price float64) types.Candle {
	return types.Candle{
		Symbol: "005930", Market: types.KOSPI, Interval: types.Day,
		Time: time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Open: price, High: price, Low: price, Close: price, Volume: 100,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestCandlesUpsertAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutCandles(ctx, []types.Candle{candle(1, 100), candle(2, 101), candle(3, 102)}); err != nil {
		t.Fatal(err)
	}
	// same key replaces the row
	if err := s.PutCandles(ctx, []types.Candle{candle(3, 110)}); err != nil {
		t.Fatal(err)
	}

	got, err := s.RecentCandles(ctx, "005930", types.Day, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 candles, got %d", len(got))
	}
	if got[0].Close != 101 || got[1].Close != 110 {
		t.Errorf("Expected closes 101,110 oldest first, got %v,%v", got[0].Close, got[1].Close)
	}
	if got[1].Market != types.KOSPI || !got[1].Time.Equal(candle(3, 0).Time) {
		t.Errorf("Unexpected candle %+v", got[1])
	}

	other, err := s.RecentCandles(ctx, "005930", types.Week, 10)
	if err != nil || len(other) != 0 {
		t.Errorf("Expected no weekly candles, got %d (%v)", len(other), err)
	}
}

func TestNewsInsertIgnoreAndByDate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	kst := time.FixedZone("KST", 9*3600)
	score := 0.4

	news := []types.News{
		{ID: "a", Title: "오늘 1", PublishedAt: time.Date(2024, 3, 15, 8, 0, 0, 0, kst), Source: types.MKStock, URL: "u1",
			RelatedSectors: []string{"반도체"}, SentimentScore: &score},
		{ID: "b", Title: "오늘 2", PublishedAt: time.Date(2024, 3, 15, 0, 30, 0, 0, kst), Source: types.HKFinance, URL: "u2"},
		{ID: "c", Title: "어제", PublishedAt: time.Date(2024, 3, 14, 23, 59, 0, 0, kst), Source: types.MKStock, URL: "u3"},
	}
	n, err := s.PutNews(ctx, news)
	if err != nil || n != 3 {
		t.Fatalf("Expected 3 inserted, got %d (%v)", n, err)
	}
	n, err = s.PutNews(ctx, news[:2])
	if err != nil || n != 0 {
		t.Errorf("Expected duplicates ignored, got %d (%v)", n, err)
	}

	got, err := s.NewsByDate(ctx, time.Date(2024, 3, 15, 12, 0, 0, 0, kst))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("Expected [b a], got %+v", got)
	}
	if got[1].SentimentScore == nil || *got[1].SentimentScore != 0.4 {
		t.Errorf("Expected sentiment score 0.4, got %v", got[1].SentimentScore)
	}
	if len(got[1].RelatedSectors) != 1 || got[1].Source != types.MKStock {
		t.Errorf("Unexpected row %+v", got[1])
	}
	if got[0].SentimentScore != nil {
		t.Error("Expected nil sentiment score")
	}
}

func TestMarketAnalysisUpsertAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.LatestMarketAnalysis(ctx); err != nil || ok {
		t.Fatalf("Expected empty store, got ok=%v err=%v", ok, err)
	}

	d1 := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	for _, a := range []analysis.MarketAnalysis{
		analysis.NewMarketAnalysis(d1, 0.5, "up", nil, nil, "", nil),
		analysis.NewMarketAnalysis(d2, 0.1, "flat", nil, nil, "", nil),
		analysis.NewMarketAnalysis(d2, -0.6, "down", []string{"은행"}, []string{"금리"}, "t", []string{"n1"}),
	} {
		if err := s.SaveMarketAnalysis(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, ok, err := s.LatestMarketAnalysis(ctx)
	if err != nil || !ok {
		t.Fatalf("Expected latest analysis, got ok=%v err=%v", ok, err)
	}
	if got.Summary() != "down" || got.SentimentScore() != -0.6 {
		t.Errorf("Expected replaced analysis for %v, got %q %v", d2, got.Summary(), got.SentimentScore())
	}
	if got.RecommendedStrategy() != analysis.Short {
		t.Errorf("Expected SHORT, got %s", got.RecommendedStrategy())
	}
	if len(got.CitedNewsIDs()) != 1 || got.ThoughtProcess() != "t" {
		t.Errorf("Expected payload fields restored, got %v %q", got.CitedNewsIDs(), got.ThoughtProcess())
	}
}
