package main

import (
	"testing"
	"time"

	"stock-trader/internal/types"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "collect-market", "collect-news", "analyze", "signal", "summary"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected command %s, got %v (%v)", name, cmd, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("Expected global --config flag")
	}
}

func TestFilterUniverse(t *testing.T) {
	universe := []types.Symbol{{Code: "005930", Market: types.KOSPI}, {Code: "KRW-BTC", Market: types.UPBIT}}
	got := filterUniverse(universe, "KRW-BTC")
	if len(got) != 1 || got[0].Market != types.UPBIT {
		t.Errorf("Unexpected filter result %v", got)
	}
	if len(filterUniverse(universe, "AAPL")) != 0 {
		t.Error("Expected no match")
	}
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	day, err := parseDay("2024-03-15", loc)
	if err != nil {
		t.Fatalf("parseDay failed: %v", err)
	}
	if day.Day() != 15 || day.Location() != loc {
		t.Errorf("Unexpected day %v", day)
	}
	if _, err := parseDay("15/03/2024", loc); err == nil {
		t.Error("Expected error for malformed date")
	}
	if got, _ := parseDay("", loc); got.Location() != loc {
		t.Errorf("Expected today in %v, got %v", loc, got.Location())
	}
}
