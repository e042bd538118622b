package display

import (
	"strings"
	"testing"
	"time"

	"stock-trader/internal/analysis"
	"stock-trader/internal/service"
	"stock-trader/internal/strategy"
	"stock-trader/internal/types"
)

func TestAnalysis(t *testing.T) {
	a := analysis.NewMarketAnalysis(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), -0.42, "약세 전환",
		[]string{"은행"}, []string{"금리 인상"}, "", []string{"n1", "n2"})
	out := Analysis(a)

	for _, want := range []string{"2024-03-15", "-0.42", "BEARISH", "SHORT", "약세 전환", "금리 인상", "2 articles"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestSignals(t *testing.T) {
	if !strings.Contains(Signals(nil), "No signals") {
		t.Error("Expected placeholder for empty signals")
	}

	out := Signals([]service.Signal{{
		Symbol:    types.Symbol{Code: "005930", Market: types.KOSPI},
		Condition: "rsi_oversold",
		Satisfied: true,
		Close:     71000,
		Time:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Context:   strategy.NewMarketContext([]float64{1, 2, 3}),
		Regime:    analysis.Neutral,
		Strategy:  analysis.CashHold,
	}})
	for _, want := range []string{"rsi_oversold", "KOSPI:005930", "71000.00", "NEUTRAL", "CASH_HOLD", "rsi_2=100.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestCollectResult(t *testing.T) {
	out := CollectResult("Market", service.CollectResult{SuccessCount: 3, FailedCount: 1, FailedSymbols: []string{"035720"}, TotalRows: 600})
	for _, want := range []string{"Market", "600", "035720"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
}
