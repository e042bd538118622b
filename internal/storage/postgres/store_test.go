package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"stock-trader/internal/analysis"
	"stock-trader/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, url)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, table := range []string{"ohlcv_candles", "news", "market_analysis"} {
		if _, err := s.pool.Exec(ctx, "truncate "+table); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPoolConfigFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "3")
	t.Setenv("DB_MIN_CONNS", "8")
	t.Setenv("DB_MAX_CONN_IDLE_TIME", "90s")

	cfg, err := PoolConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxConns != 3 || cfg.MinConns != 3 {
		t.Errorf("Expected min clamped to max 3, got %d/%d", cfg.MinConns, cfg.MaxConns)
	}
	if cfg.MaxConnIdleTime != 90*time.Second || cfg.MaxConnLifetime != 30*time.Minute {
		t.Errorf("Unexpected durations %v %v", cfg.MaxConnIdleTime, cfg.MaxConnLifetime)
	}

	t.Setenv("DB_MAX_CONNS", "many")
	if _, err := PoolConfigFromEnv(); err == nil {
		t.Error("Expected error for invalid DB_MAX_CONNS")
	}
}

func TestNewPoolRequiresURL(t *testing.T) {
	if _, err := NewPool(context.Background(), "", PoolConfig{MaxConns: 1}); err == nil {
		t.Error("Expected error without DATABASE_URL")
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	candles := []types.Candle{
		{Symbol: "KRW-BTC", Market: types.UPBIT, Interval: types.Day, Time: day.AddDate(0, 0, -1), Close: 1},
		{Symbol: "KRW-BTC", Market: types.UPBIT, Interval: types.Day, Time: day, Close: 2},
	}
	if err := s.PutCandles(ctx, candles); err != nil {
		t.Fatal(err)
	}
	got, err := s.RecentCandles(ctx, "KRW-BTC", types.Day, 5)
	if err != nil || len(got) != 2 || got[1].Close != 2 {
		t.Errorf("Unexpected candles %+v (%v)", got, err)
	}

	news := []types.News{{ID: "x", Title: "t", PublishedAt: day.Add(time.Hour), Source: types.MKStock, URL: "u"}}
	if n, err := s.PutNews(ctx, news); err != nil || n != 1 {
		t.Errorf("Expected 1 inserted, got %d (%v)", n, err)
	}
	if n, _ := s.PutNews(ctx, news); n != 0 {
		t.Errorf("Expected duplicate ignored, got %d", n)
	}
	if byDate, err := s.NewsByDate(ctx, day); err != nil || len(byDate) != 1 {
		t.Errorf("Expected 1 news for day, got %d (%v)", len(byDate), err)
	}

	if err := s.SaveMarketAnalysis(ctx, analysis.NewMarketAnalysis(day, 0.35, "up", nil, nil, "", nil)); err != nil {
		t.Fatal(err)
	}
	a, ok, err := s.LatestMarketAnalysis(ctx)
	if err != nil || !ok || a.RecommendedStrategy() != analysis.Long {
		t.Errorf("Unexpected latest analysis %v %v %v", a.RecommendedStrategy(), ok, err)
	}
}
