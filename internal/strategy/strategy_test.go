package strategy

import (
	"errors"
	"math/rand"
	"testing"

	"stock-trader/internal/ta"
)

func TestNewStrategyConfigValid(t *testing.T) {
	tests := []struct{ oversold, overbought, sharp float64 }{
		{30, 70, 10},
		{0, 50.5, 0},
		{0, 100, 10},
		{49.9, 50, 5},
		{50, 100, 10},
	}
	for _, tt := range tests {
		cfg, err := NewStrategyConfig(tt.oversold, tt.overbought, tt.sharp)
		if err != nil {
			t.Errorf("NewStrategyConfig(%v, %v, %v) unexpected error: %v", tt.oversold, tt.overbought, tt.sharp, err)
			continue
		}
		if cfg.RSIOversoldLimit() != tt.oversold || cfg.RSIOverboughtLimit() != tt.overbought || cfg.SharpDropLimit() != tt.sharp {
			t.Errorf("Expected config to keep values %v, got %+v", tt, cfg)
		}
	}
}

func TestNewStrategyConfigInvalid(t *testing.T) {
	tests := []struct {
		name                       string
		oversold, overbought, sharp float64
		field                      string
	}{
		{"negative oversold", -1, 70, 10, "rsi_oversold_limit"},
		{"oversold above 50", 51, 70, 10, "rsi_oversold_limit"},
		{"overbought below 50", 30, 49, 10, "rsi_overbought_limit"},
		{"overbought above 100", 30, 101, 10, "rsi_overbought_limit"},
		{"oversold equals overbought", 50, 50, 10, "rsi_oversold_limit"},
		{"negative sharp drop", 30, 70, -0.1, "sharp_drop_limit"},
		{"sharp drop above 10", 30, 70, 11, "sharp_drop_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStrategyConfig(tt.oversold, tt.overbought, tt.sharp)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, ErrConfigValidation) {
				t.Errorf("Expected ErrConfigValidation, got %v", err)
			}
			var verr *ConfigValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ConfigValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestDefaultStrategyConfig(t *testing.T) {
	cfg := DefaultStrategyConfig()
	if cfg.RSIOversoldLimit() != 30 || cfg.RSIOverboughtLimit() != 70 || cfg.SharpDropLimit() != 10 {
		t.Errorf("Expected 30/70/10 defaults, got %v/%v/%v", cfg.RSIOversoldLimit(), cfg.RSIOverboughtLimit(), cfg.SharpDropLimit())
	}
}

func constant(v bool) Condition {
	return Leaf("const", func(MarketContext) bool { return v })
}

func TestCombinatorLaws(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ctx := MarketContext{}
	for i := 0; i < 200; i++ {
		a, b := rng.Intn(2) == 1, rng.Intn(2) == 1
		if got := constant(a).And(constant(b)).IsSatisfiedBy(ctx); got != (a && b) {
			t.Errorf("And(%v, %v) = %v", a, b, got)
		}
		if got := constant(a).Or(constant(b)).IsSatisfiedBy(ctx); got != (a || b) {
			t.Errorf("Or(%v, %v) = %v", a, b, got)
		}
	}
}

func TestCombiningDoesNotMutateOperands(t *testing.T) {
	a := constant(true)
	b := constant(false)
	_ = a.And(b)
	_ = a.Or(b)
	if !a.IsSatisfiedBy(MarketContext{}) || b.IsSatisfiedBy(MarketContext{}) {
		t.Error("Expected operands to keep their own results")
	}
	if a.String() != "const" {
		t.Errorf("Expected operand to stay a leaf, got %s", a)
	}
}

func TestZeroConditionIsNeverSatisfied(t *testing.T) {
	var c Condition
	if c.IsSatisfiedBy(MarketContext{}) {
		t.Error("Expected zero condition to be unsatisfied")
	}
	if Leaf("nil", nil).IsSatisfiedBy(MarketContext{}) {
		t.Error("Expected leaf without predicate to be unsatisfied")
	}
}

func TestLeavesWithAbsentIndicators(t *testing.T) {
	empty := MarketContext{}
	cfg := DefaultStrategyConfig()
	leaves := []Condition{
		TrendAndPerfectOrder(),
		RsiFastCrossOverSlow(),
		RsiOversold(cfg),
		RsiOverbought(cfg),
		SharpDrop(cfg),
	}
	for _, c := range leaves {
		if c.IsSatisfiedBy(empty) {
			t.Errorf("Expected %s to be false without indicators", c)
		}
	}

	onlySMA := MarketContext{SMA: &ta.SMAResult{SMA20: 105, SMA60: 100, SMA120: 95}}
	if TrendAndPerfectOrder().IsSatisfiedBy(onlySMA) {
		t.Error("Expected trend condition to require EMA")
	}
}

func TestTrendAndPerfectOrder(t *testing.T) {
	ctx := MarketContext{
		SMA: &ta.SMAResult{SMA20: 105, SMA60: 100, SMA120: 95},
		EMA: &ta.EMAResult{EMA20: 120, EMA60: 110, EMA120: 100},
	}
	if !TrendAndPerfectOrder().IsSatisfiedBy(ctx) {
		t.Error("Expected trend and perfect order to be satisfied")
	}

	ctx.EMA = &ta.EMAResult{EMA20: 100, EMA60: 110, EMA120: 120}
	if TrendAndPerfectOrder().IsSatisfiedBy(ctx) {
		t.Error("Expected inverted EMA to fail")
	}
}

func TestRsiConditions(t *testing.T) {
	cfg, err := NewStrategyConfig(25, 75, 5)
	if err != nil {
		t.Fatal(err)
	}
	ctx := MarketContext{RSI: &ta.RSIResult{RSI2: 3, RSI7: 50, RSI9: 60, RSI14: 20, RSI50: 50}}

	if !RsiFastCrossOverSlow().IsSatisfiedBy(ctx) {
		t.Error("Expected fast cross over slow")
	}
	if !RsiOversold(cfg).IsSatisfiedBy(ctx) {
		t.Error("Expected RSI14 20 to be oversold at 25")
	}
	if RsiOverbought(cfg).IsSatisfiedBy(ctx) {
		t.Error("Expected RSI14 20 to not be overbought at 75")
	}
	if !SharpDrop(cfg).IsSatisfiedBy(ctx) {
		t.Error("Expected RSI2 3 to be a sharp drop at 5")
	}
}

func TestNewMarketContext(t *testing.T) {
	if ctx := NewMarketContext(nil); ctx.SMA != nil || ctx.EMA != nil || ctx.RSI != nil {
		t.Errorf("Expected empty context for no prices, got %+v", ctx)
	}

	short := make([]float64, 30)
	for i := range short {
		short[i] = float64(i + 1)
	}
	ctx := NewMarketContext(short)
	if ctx.SMA != nil {
		t.Error("Expected SMA to be absent with 30 prices")
	}
	if ctx.EMA == nil || ctx.RSI == nil {
		t.Fatal("Expected EMA and RSI to be present")
	}
	if TrendAndPerfectOrder().IsSatisfiedBy(ctx) {
		t.Error("Expected trend condition to be false without SMA")
	}

	long := make([]float64, 150)
	for i := range long {
		long[i] = 100 + float64(i)
	}
	ctx = NewMarketContext(long)
	if ctx.SMA == nil {
		t.Fatal("Expected SMA with 150 prices")
	}
	if !TrendAndPerfectOrder().IsSatisfiedBy(ctx) {
		t.Error("Expected steady uptrend to satisfy trend and perfect order")
	}
}

func TestParse(t *testing.T) {
	cfg := DefaultStrategyConfig()
	c, err := Parse("trend_and_perfect_order AND (rsi_fast_cross_over_slow or RSI_OVERSOLD)", cfg)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	want := "(trend_and_perfect_order AND (rsi_fast_cross_over_slow OR rsi_oversold))"
	if c.String() != want {
		t.Errorf("Expected %s, got %s", want, c)
	}

	c, err = Parse("sharp_drop OR rsi_oversold AND rsi_overbought", cfg)
	if err != nil {
		t.Fatalf("Unexpected parse error: %v", err)
	}
	want = "(sharp_drop OR (rsi_oversold AND rsi_overbought))"
	if c.String() != want {
		t.Errorf("Expected AND to bind tighter: %s, got %s", want, c)
	}
}

func TestParseErrors(t *testing.T) {
	cfg := DefaultStrategyConfig()
	for _, expr := range []string{
		"",
		"unknown_leaf",
		"trend_and_perfect_order AND",
		"(sharp_drop",
		"sharp_drop)",
		"AND sharp_drop",
		"sharp_drop & rsi_oversold",
	} {
		if _, err := Parse(expr, cfg); err == nil {
			t.Errorf("Expected error for %q", expr)
		}
	}
}
