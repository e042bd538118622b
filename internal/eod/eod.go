// Package eod summarizes a day's journaled signals into a CSV report.
package eod

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"stock-trader/internal/interfaces"
	"stock-trader/internal/tradelog"
)

type Summarizer struct {
	dir string
	loc *time.Location
}

var _ interfaces.EodSummarizer = (*Summarizer)(nil)

// NewSummarizer reads the signal journal under dir and writes reports to
// dir/eod.
func NewSummarizer(dir string, loc *time.Location) *Summarizer {
	if dir == "" {
		dir = "logs"
	}
	if loc == nil {
		loc = time.Local
	}
	return &Summarizer{dir: dir, loc: loc}
}

func (s *Summarizer) signalsFile(day string) string {
	return filepath.Join(s.dir, "signals", day+".jsonl")
}

func (s *Summarizer) csvPath(day string) string {
	return filepath.Join(s.dir, "eod", day+".csv")
}

// SummarizeDay aggregates the signals journaled on t's day. Rows are
// per symbol, in symbol order, followed by a TOTAL row.
func (s *Summarizer) SummarizeDay(_ context.Context, t time.Time) (string, error) {
	day := t.In(s.loc).Format("2006-01-02")
	f, err := os.Open(s.signalsFile(day))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e tradelog.SignalEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		key := e.Market + ":" + e.Symbol
		row := aggs[key]
		if row == nil {
			row = &aggRow{Symbol: e.Symbol, Market: e.Market}
			aggs[key] = row
		}
		row.Evaluations++
		if e.Satisfied {
			row.Satisfied++
		}
		row.LastClose = e.Close
		row.LastRegime = e.Regime
		row.Strategy = e.Strategy
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := s.csvPath(day)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"symbol", "market", "evaluations", "satisfied", "last_close", "regime", "strategy"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	var totalEval, totalSat int
	for _, k := range keys {
		r := aggs[k]
		rec := []string{r.Symbol, r.Market, strconv.Itoa(r.Evaluations), strconv.Itoa(r.Satisfied),
			fmt.Sprintf("%.2f", r.LastClose), r.LastRegime, r.Strategy}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalEval += r.Evaluations
		totalSat += r.Satisfied
	}
	_ = w.Write([]string{"TOTAL", "", strconv.Itoa(totalEval), strconv.Itoa(totalSat), "", "", ""})
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return outPath, nil
}
