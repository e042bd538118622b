package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stock-trader/internal/display"
	"stock-trader/internal/logger"
	"stock-trader/internal/scheduler"
	"stock-trader/internal/service"
	"stock-trader/internal/types"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Shutdown(context.Background())

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "trader",
		Short:         "Korean market sentiment and technical signal service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Configuration file path")

	// withApp wires the services for one command and closes them afterwards.
	withApp := func(fn func(ctx context.Context, a *app, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return fn(ctx, a, cmd)
		}
	}

	rootCmd.AddCommand(
		newRunCmd(withApp),
		newCollectMarketCmd(withApp),
		newCollectNewsCmd(withApp),
		newAnalyzeCmd(withApp),
		newSignalCmd(withApp),
		newSummaryCmd(withApp),
	)
	return rootCmd
}

type appRunner func(fn func(ctx context.Context, a *app, cmd *cobra.Command) error) func(*cobra.Command, []string) error

func newRunCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daily collection, analysis and signal jobs",
		RunE: withApp(func(ctx context.Context, a *app, _ *cobra.Command) error {
			s := scheduler.New(a.cfg.Location(), time.Duration(a.cfg.Schedule.PollSeconds)*time.Second)
			jobs := []scheduler.Job{
				{Name: "market_collect", At: a.cfg.Schedule.MarketCollectAt, Run: scheduler.Chain(a.collectMarket, a.evaluateSignals, a.summarizeSignals)},
				{Name: "news_collect", At: a.cfg.Schedule.NewsCollectAt, Run: scheduler.Chain(a.collectNews, a.analyzeToday)},
				{Name: "journal_compress", At: "00:05", Run: a.compressJournal},
			}
			for _, job := range jobs {
				if err := s.Add(job); err != nil {
					return err
				}
			}
			return s.Run(ctx)
		}),
	}
}

func newCollectMarketCmd(withApp appRunner) *cobra.Command {
	var (
		interval string
		count    int
	)
	cmd := &cobra.Command{
		Use:   "collect-market",
		Short: "Collect OHLCV candles for the configured universe",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			iv := a.cfg.Market.Interval
			if interval != "" {
				var err error
				if iv, err = types.ParseInterval(interval); err != nil {
					return err
				}
			}
			n := a.cfg.Market.HistoryCount
			if count > 0 {
				n = count
			}
			res := a.market.Execute(ctx, a.cfg.Market.Universe, iv, n)
			fmt.Fprintln(cmd.OutOrStdout(), display.CollectResult("Market collection", res))
			return nil
		}),
	}
	cmd.Flags().StringVar(&interval, "interval", "", "Candle interval: DAY, WEEK or MONTH (config default)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of candles per symbol (config default)")
	return cmd
}

func newCollectNewsCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "collect-news",
		Short: "Crawl the configured news feeds",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			n, err := a.news.Execute(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %d new articles\n", n)
			return nil
		}),
	}
}

func newAnalyzeCmd(withApp appRunner) *cobra.Command {
	var (
		date   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a day's stored news into a market regime",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			day, err := parseDay(date, a.cfg.Location())
			if err != nil {
				return err
			}
			res, err := a.analysis.Execute(ctx, day)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), display.Analysis(res))
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "Analysis date in YYYY-MM-DD format (today if not provided)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	return cmd
}

func newSignalCmd(withApp appRunner) *cobra.Command {
	var symbol string
	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Evaluate the entry condition on stored candles",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			symbols := a.cfg.Market.Universe
			if symbol != "" {
				symbols = filterUniverse(symbols, symbol)
				if len(symbols) == 0 {
					return fmt.Errorf("symbol %s is not in the configured universe", symbol)
				}
			}
			signals, err := a.signals.EvaluateAll(ctx, symbols)
			fmt.Fprintln(cmd.OutOrStdout(), display.Signals(signals))
			return err
		}),
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "Evaluate only this symbol code")
	return cmd
}

func newSummaryCmd(withApp appRunner) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Write the end-of-day CSV summary of journaled signals",
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command) error {
			day, err := parseDay(date, a.cfg.Location())
			if err != nil {
				return err
			}
			path, err := a.eod.SummarizeDay(ctx, day)
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No signals journaled for", day.Format("2006-01-02"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
	cmd.Flags().StringVar(&date, "date", "", "Summary date in YYYY-MM-DD format (today if not provided)")
	return cmd
}

// parseDay reads a YYYY-MM-DD flag value in loc; empty means today.
func parseDay(date string, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Now().In(loc), nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", date, err)
	}
	return day, nil
}

func filterUniverse(universe []types.Symbol, code string) []types.Symbol {
	var out []types.Symbol
	for _, s := range universe {
		if s.Code == code {
			out = append(out, s)
		}
	}
	return out
}

// Scheduled job steps.

func (a *app) collectMarket(ctx context.Context) error {
	res := a.market.Execute(ctx, a.cfg.Market.Universe, a.cfg.Market.Interval, a.cfg.Market.HistoryCount)
	if len(a.cfg.Market.Universe) > 0 && res.SuccessCount == 0 {
		return fmt.Errorf("market collection failed for every symbol: %v", res.FailedSymbols)
	}
	return nil
}

func (a *app) evaluateSignals(ctx context.Context) error {
	signals, err := a.signals.EvaluateAll(ctx, a.cfg.Market.Universe)
	satisfied := 0
	for _, s := range signals {
		if s.Satisfied {
			satisfied++
		}
	}
	logger.Info(ctx, "Signals evaluated", "total", len(signals), "satisfied", satisfied)
	if err != nil {
		logger.Warn(ctx, "Some signals could not be evaluated", "error", err)
	}
	return nil
}

func (a *app) summarizeSignals(ctx context.Context) error {
	_, err := a.eod.SummarizeDay(ctx, time.Now().In(a.cfg.Location()))
	return err
}

func (a *app) collectNews(ctx context.Context) error {
	return scheduler.Retry(ctx, retryPolicy(a.cfg), "collect_news", func(ctx context.Context) error {
		_, err := a.news.Execute(ctx)
		return err
	})
}

func (a *app) analyzeToday(ctx context.Context) error {
	_, err := a.analysis.Execute(ctx, time.Now().In(a.cfg.Location()))
	if errors.Is(err, service.ErrNoNews) {
		logger.Warn(ctx, "Skipping market analysis", "reason", err.Error())
		return nil
	}
	return err
}

func (a *app) compressJournal(ctx context.Context) error {
	n, err := a.journal.CompressOlder(a.cfg.Journal.RetentionDays)
	if n > 0 {
		logger.Info(ctx, "Compressed journal files", "count", n)
	}
	return err
}
