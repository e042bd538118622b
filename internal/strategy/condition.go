package strategy

import "fmt"

// Predicate is a side-effect free test over a market context.
type Predicate func(MarketContext) bool

type op uint8

const (
	opInvalid op = iota
	opLeaf
	opAnd
	opOr
)

// Condition is an immutable boolean tree: a named leaf predicate, or an AND /
// OR node over two conditions. The zero Condition is never satisfied.
type Condition struct {
	op          op
	name        string
	pred        Predicate
	left, right *Condition
}

// Leaf wraps a predicate as a condition.
func Leaf(name string, pred Predicate) Condition {
	return Condition{op: opLeaf, name: name, pred: pred}
}

// And returns a new condition satisfied when both c and other are.
func (c Condition) And(other Condition) Condition {
	return Condition{op: opAnd, left: &c, right: &other}
}

// Or returns a new condition satisfied when either c or other is.
func (c Condition) Or(other Condition) Condition {
	return Condition{op: opOr, left: &c, right: &other}
}

// IsSatisfiedBy evaluates the tree against ctx.
func (c Condition) IsSatisfiedBy(ctx MarketContext) bool {
	switch c.op {
	case opLeaf:
		return c.pred != nil && c.pred(ctx)
	case opAnd:
		return c.left.IsSatisfiedBy(ctx) && c.right.IsSatisfiedBy(ctx)
	case opOr:
		return c.left.IsSatisfiedBy(ctx) || c.right.IsSatisfiedBy(ctx)
	default:
		return false
	}
}

func (c Condition) String() string {
	switch c.op {
	case opLeaf:
		return c.name
	case opAnd:
		return fmt.Sprintf("(%s AND %s)", c.left, c.right)
	case opOr:
		return fmt.Sprintf("(%s OR %s)", c.left, c.right)
	default:
		return "<invalid>"
	}
}

// Leaf names accepted by Parse.
const (
	NameTrendAndPerfectOrder = "trend_and_perfect_order"
	NameRsiFastCrossOverSlow = "rsi_fast_cross_over_slow"
	NameRsiOversold          = "rsi_oversold"
	NameRsiOverbought        = "rsi_overbought"
	NameSharpDrop            = "sharp_drop"
)

// TrendAndPerfectOrder is satisfied when SMA and EMA are present, the SMA
// shows a trend market and the EMA is in perfect order.
func TrendAndPerfectOrder() Condition {
	return Leaf(NameTrendAndPerfectOrder, func(ctx MarketContext) bool {
		if ctx.SMA == nil || ctx.EMA == nil {
			return false
		}
		return ctx.SMA.IsATrendMarket() && ctx.EMA.IsPerfectOrder()
	})
}

// RsiFastCrossOverSlow is satisfied when RSI is present and RSI14 < RSI9.
func RsiFastCrossOverSlow() Condition {
	return Leaf(NameRsiFastCrossOverSlow, func(ctx MarketContext) bool {
		return ctx.RSI != nil && ctx.RSI.FastCrossOverSlow()
	})
}

func RsiOversold(cfg StrategyConfig) Condition {
	limit := cfg.RSIOversoldLimit()
	return Leaf(NameRsiOversold, func(ctx MarketContext) bool {
		return ctx.RSI != nil && ctx.RSI.IsRSIOversold(limit)
	})
}

func RsiOverbought(cfg StrategyConfig) Condition {
	limit := cfg.RSIOverboughtLimit()
	return Leaf(NameRsiOverbought, func(ctx MarketContext) bool {
		return ctx.RSI != nil && ctx.RSI.IsRSIOverbought(limit)
	})
}

// SharpDrop is satisfied when RSI2 falls below the configured sharp drop limit.
func SharpDrop(cfg StrategyConfig) Condition {
	limit := cfg.SharpDropLimit()
	return Leaf(NameSharpDrop, func(ctx MarketContext) bool {
		return ctx.RSI != nil && ctx.RSI.HasTheStockDroppedSharply(limit)
	})
}
