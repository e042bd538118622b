package strategy

import (
	"errors"
	"fmt"
)

// Default thresholds.
const (
	DefaultRSIOversoldLimit   = 30.0
	DefaultRSIOverboughtLimit = 70.0
	DefaultSharpDropLimit     = 10.0
)

// ErrConfigValidation is matched by every *ConfigValidationError.
var ErrConfigValidation = errors.New("invalid strategy config")

// ConfigValidationError reports the first violated threshold constraint.
type ConfigValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid strategy config: %s=%.2f %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigValidationError) Unwrap() error {
	return ErrConfigValidation
}

// StrategyConfig holds the thresholds used by the config-bound conditions.
// Values are checked once in NewStrategyConfig and never change afterwards.
type StrategyConfig struct {
	rsiOversoldLimit   float64
	rsiOverboughtLimit float64
	sharpDropLimit     float64
}

// DefaultStrategyConfig returns 30/70/10.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		rsiOversoldLimit:   DefaultRSIOversoldLimit,
		rsiOverboughtLimit: DefaultRSIOverboughtLimit,
		sharpDropLimit:     DefaultSharpDropLimit,
	}
}

// NewStrategyConfig validates and builds a config. It requires
// 0 <= oversold <= 50 <= overbought <= 100, oversold < overbought and
// 0 <= sharpDrop <= 10. Out of range values are rejected, never clamped.
func NewStrategyConfig(oversold, overbought, sharpDrop float64) (StrategyConfig, error) {
	switch {
	case !(oversold >= 0 && oversold <= 50):
		return StrategyConfig{}, &ConfigValidationError{Field: "rsi_oversold_limit", Value: oversold, Reason: "must be within [0, 50]"}
	case !(overbought >= 50 && overbought <= 100):
		return StrategyConfig{}, &ConfigValidationError{Field: "rsi_overbought_limit", Value: overbought, Reason: "must be within [50, 100]"}
	case !(oversold < overbought):
		return StrategyConfig{}, &ConfigValidationError{Field: "rsi_oversold_limit", Value: oversold, Reason: fmt.Sprintf("must be below rsi_overbought_limit %.2f", overbought)}
	case !(sharpDrop >= 0 && sharpDrop <= 10):
		return StrategyConfig{}, &ConfigValidationError{Field: "sharp_drop_limit", Value: sharpDrop, Reason: "must be within [0, 10]"}
	}
	return StrategyConfig{
		rsiOversoldLimit:   oversold,
		rsiOverboughtLimit: overbought,
		sharpDropLimit:     sharpDrop,
	}, nil
}

func (c StrategyConfig) RSIOversoldLimit() float64   { return c.rsiOversoldLimit }
func (c StrategyConfig) RSIOverboughtLimit() float64 { return c.rsiOverboughtLimit }
func (c StrategyConfig) SharpDropLimit() float64     { return c.sharpDropLimit }
