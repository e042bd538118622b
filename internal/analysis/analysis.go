package analysis

import (
	"encoding/json"
	"fmt"
	"time"
)

// MarketSentiment is the discrete market regime derived from a sentiment score.
type MarketSentiment string

const (
	Bullish MarketSentiment = "BULLISH"
	Bearish MarketSentiment = "BEARISH"
	Neutral MarketSentiment = "NEUTRAL"
)

// TradingStrategy is the recommendation attached to a regime.
type TradingStrategy string

const (
	Long     TradingStrategy = "LONG"
	Short    TradingStrategy = "SHORT"
	CashHold TradingStrategy = "CASH_HOLD"
)

// Regime thresholds. Both bounds are inclusive.
const (
	BullishThreshold = 0.3
	BearishThreshold = -0.3
)

// ClassifySentiment maps a score to a regime. NaN falls through to Neutral.
func ClassifySentiment(score float64) MarketSentiment {
	switch {
	case score >= BullishThreshold:
		return Bullish
	case score <= BearishThreshold:
		return Bearish
	default:
		return Neutral
	}
}

// RecommendStrategy maps a regime to its strategy. Unknown regimes are
// treated as Neutral.
func RecommendStrategy(s MarketSentiment) TradingStrategy {
	switch s {
	case Bullish:
		return Long
	case Bearish:
		return Short
	default:
		return CashHold
	}
}

// Action returns the routing label used when dispatching on a strategy.
func (s TradingStrategy) Action() string {
	switch s {
	case Long:
		return "long_momentum"
	case Short:
		return "short_selling"
	default:
		return "cash_hold"
	}
}

// MarketAnalysis is the result of one LLM analysis run. Regime and strategy
// are always derived from the score and are never stored.
type MarketAnalysis struct {
	date           time.Time
	sentimentScore float64
	summary        string
	primarySectors []string
	reasons        []string
	thoughtProcess string
	citedNewsIDs   []string
}

// NewMarketAnalysis builds an analysis. Slices are copied and date is
// truncated to the calendar day in its own location.
func NewMarketAnalysis(date time.Time, score float64, summary string, sectors, reasons []string, thought string, cited []string) MarketAnalysis {
	y, m, d := date.Date()
	return MarketAnalysis{
		date:           time.Date(y, m, d, 0, 0, 0, 0, date.Location()),
		sentimentScore: score,
		summary:        summary,
		primarySectors: clone(sectors),
		reasons:        clone(reasons),
		thoughtProcess: thought,
		citedNewsIDs:   clone(cited),
	}
}

// Fallback is the neutral analysis recorded when the analyst fails.
func Fallback(date time.Time, err error) MarketAnalysis {
	return NewMarketAnalysis(date, 0, fmt.Sprintf("Error: %v", err), nil, []string{"System Error"}, "", nil)
}

func clone(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (a MarketAnalysis) Date() time.Time          { return a.date }
func (a MarketAnalysis) SentimentScore() float64  { return a.sentimentScore }
func (a MarketAnalysis) Summary() string          { return a.summary }
func (a MarketAnalysis) PrimarySectors() []string { return clone(a.primarySectors) }
func (a MarketAnalysis) Reasons() []string        { return clone(a.reasons) }
func (a MarketAnalysis) ThoughtProcess() string   { return a.thoughtProcess }
func (a MarketAnalysis) CitedNewsIDs() []string   { return clone(a.citedNewsIDs) }

// DeterminedMarketSentiment classifies the stored score.
func (a MarketAnalysis) DeterminedMarketSentiment() MarketSentiment {
	return ClassifySentiment(a.sentimentScore)
}

// RecommendedStrategy maps the determined sentiment to a strategy.
func (a MarketAnalysis) RecommendedStrategy() TradingStrategy {
	return RecommendStrategy(a.DeterminedMarketSentiment())
}

// IsZero reports whether a was never constructed.
func (a MarketAnalysis) IsZero() bool {
	return a.date.IsZero() && a.summary == "" && a.sentimentScore == 0
}

const dateLayout = "2006-01-02"

type analysisJSON struct {
	Date            string          `json:"date"`
	SentimentScore  float64         `json:"sentiment_score"`
	Summary         string          `json:"summary"`
	PrimarySectors  []string        `json:"primary_sectors"`
	Reasons         []string        `json:"reasons"`
	MarketSentiment MarketSentiment `json:"market_sentiment"`
	TradingStrategy TradingStrategy `json:"trading_strategy"`
	ThoughtProcess  string          `json:"thought_process"`
	CitedNewsIDs    []string        `json:"cited_news_ids"`
}

// MarshalJSON includes the derived regime and strategy for readers of the
// persisted record.
func (a MarketAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(analysisJSON{
		Date:            a.date.Format(dateLayout),
		SentimentScore:  a.sentimentScore,
		Summary:         a.summary,
		PrimarySectors:  clone(a.primarySectors),
		Reasons:         clone(a.reasons),
		MarketSentiment: a.DeterminedMarketSentiment(),
		TradingStrategy: a.RecommendedStrategy(),
		ThoughtProcess:  a.thoughtProcess,
		CitedNewsIDs:    clone(a.citedNewsIDs),
	})
}

// UnmarshalJSON restores an analysis. Any market_sentiment or
// trading_strategy in the input is ignored and recomputed from the score.
func (a *MarketAnalysis) UnmarshalJSON(data []byte) error {
	var raw analysisJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var date time.Time
	if raw.Date != "" {
		d, err := time.Parse(dateLayout, raw.Date)
		if err != nil {
			return fmt.Errorf("parse analysis date: %w", err)
		}
		date = d
	}
	*a = NewMarketAnalysis(date, raw.SentimentScore, raw.Summary, raw.PrimarySectors, raw.Reasons, raw.ThoughtProcess, raw.CitedNewsIDs)
	return nil
}
