// Package tradelog keeps a daily JSONL journal of evaluated signals and
// market analyses.
package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	signalsDir  = "signals"
	analysisDir = "analysis"
	ext         = ".jsonl"
)

type SignalEntry struct {
	Time       string             `json:"time"`
	Symbol     string             `json:"symbol"`
	Market     string             `json:"market"`
	Condition  string             `json:"condition"`
	Satisfied  bool               `json:"satisfied"`
	Close      float64            `json:"close"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
	Regime     string             `json:"regime,omitempty"`
	Strategy   string             `json:"strategy,omitempty"`
}

type AnalysisEntry struct {
	Time         string   `json:"time"`
	Date         string   `json:"date"`
	Score        float64  `json:"score"`
	Sentiment    string   `json:"sentiment"`
	Strategy     string   `json:"strategy"`
	Summary      string   `json:"summary"`
	NewsCount    int      `json:"news_count"`
	CitedNewsIDs []string `json:"cited_news_ids,omitempty"`
}

// Journal appends entries to <dir>/<kind>/<YYYY-MM-DD>.jsonl, dated in loc.
type Journal struct {
	dir string
	loc *time.Location
	now func() time.Time
	mu  sync.Mutex
}

func New(dir string, loc *time.Location) *Journal {
	if dir == "" {
		dir = "logs"
	}
	if loc == nil {
		loc = time.Local
	}
	return &Journal{dir: dir, loc: loc, now: time.Now}
}

func (j *Journal) AppendSignal(e SignalEntry) error {
	return j.append(signalsDir, func(now string) any { e.Time = now; return e })
}

func (j *Journal) AppendAnalysis(e AnalysisEntry) error {
	return j.append(analysisDir, func(now string) any { e.Time = now; return e })
}

func (j *Journal) append(kind string, stamp func(now string) any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now().In(j.loc)
	p := filepath.Join(j.dir, kind, now.Format("2006-01-02")+ext)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(stamp(now.Format("2006-01-02 15:04:05")))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files dated more than retentionDays ago and
// returns how many it compressed.
func (j *Journal) CompressOlder(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().In(j.loc).AddDate(0, 0, -retentionDays)
	compressed := 0
	err := filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ext {
			return nil
		}
		day, perr := time.ParseInLocation("2006-01-02", strings.TrimSuffix(d.Name(), ext), j.loc)
		if perr != nil || !day.Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		// already compressed; drop the leftover
		if _, serr := os.Stat(gz); serr == nil {
			return os.Remove(p)
		}
		if err := gzipFile(p, gz); err != nil {
			return fmt.Errorf("compress %s: %w", p, err)
		}
		compressed++
		return os.Remove(p)
	})
	return compressed, err
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
