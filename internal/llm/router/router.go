package router

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"stock-trader/internal/analysis"
	"stock-trader/internal/interfaces"
	"stock-trader/internal/llm"
	"stock-trader/internal/logger"
	"stock-trader/internal/types"
)

// ChatGenerator is the part of an eino chat model the analyst needs.
type ChatGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

const nodeMarketAnalyst = "market_analyst"

// state flows through every node of the graph.
type state struct {
	Date     time.Time
	News     []types.News
	Analysis analysis.MarketAnalysis
	Action   string
}

type Config struct {
	MaxNews     int
	Temperature float32
}

// Analyst runs news through an analyst node and routes the result to a
// strategy node chosen by the analysis regime.
type Analyst struct {
	runnable compose.Runnable[*state, *state]
}

var _ interfaces.MarketAnalyst = (*Analyst)(nil)

func NewAnalyst(ctx context.Context, gen ChatGenerator, cfg Config) (*Analyst, error) {
	g := compose.NewGraph[*state, *state]()

	analyze := func(ctx context.Context, s *state) (*state, error) {
		msgs := llm.BuildMessages(s.News, cfg.MaxNews)
		out, err := gen.Generate(ctx, msgs, model.WithTemperature(cfg.Temperature))
		if err == nil && out == nil {
			err = fmt.Errorf("empty model response")
		}
		if err == nil {
			s.Analysis, err = llm.ParseAnalysis(out.Content, s.Date)
		}
		if err != nil {
			logger.ErrorWithErr(ctx, "Market analysis node failed", err, "news", len(s.News))
			s.Analysis = analysis.Fallback(s.Date, err)
		}
		return s, nil
	}
	if err := g.AddLambdaNode(nodeMarketAnalyst, compose.InvokableLambda(analyze)); err != nil {
		return nil, err
	}

	ends := map[string]bool{}
	for _, strat := range []analysis.TradingStrategy{analysis.Long, analysis.Short, analysis.CashHold} {
		action := strat.Action()
		ends[action] = true
		node := func(_ context.Context, s *state) (*state, error) {
			s.Action = action
			return s, nil
		}
		if err := g.AddLambdaNode(action, compose.InvokableLambda(node)); err != nil {
			return nil, err
		}
		if err := g.AddEdge(action, compose.END); err != nil {
			return nil, err
		}
	}

	route := func(_ context.Context, s *state) (string, error) {
		return s.Analysis.RecommendedStrategy().Action(), nil
	}
	if err := g.AddEdge(compose.START, nodeMarketAnalyst); err != nil {
		return nil, err
	}
	if err := g.AddBranch(nodeMarketAnalyst, compose.NewGraphBranch(route, ends)); err != nil {
		return nil, err
	}

	runnable, err := g.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile analyst graph: %w", err)
	}
	return &Analyst{runnable: runnable}, nil
}

// AnalyzeMarket never fails because of the model: a failed call or an
// unreadable answer yields the fallback analysis.
func (a *Analyst) AnalyzeMarket(ctx context.Context, date time.Time, news []types.News) (analysis.MarketAnalysis, error) {
	out, err := a.runnable.Invoke(ctx, &state{Date: date, News: news})
	if err != nil {
		return analysis.MarketAnalysis{}, err
	}
	logger.Debug(ctx, "Analyst graph routed", "action", out.Action)
	return out.Analysis, nil
}
