package tradelog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var kst = time.FixedZone("KST", 9*3600)

func TestAppendSignal(t *testing.T) {
	dir := t.TempDir()
	j := New(dir, kst)
	// 16:00 UTC is already the next day in KST
	j.now = func() time.Time { return time.Date(2024, 3, 14, 16, 0, 0, 0, time.UTC) }

	for _, sym := range []string{"005930", "000660"} {
		if err := j.AppendSignal(SignalEntry{Symbol: sym, Condition: "rsi_oversold", Satisfied: true, Close: 70000}); err != nil {
			t.Fatal(err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "signals", "2024-03-15.jsonl"))
	if err != nil {
		t.Fatalf("Expected KST-dated file: %v", err)
	}
	defer f.Close()

	var lines []SignalEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e SignalEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatal(err)
		}
		lines = append(lines, e)
	}
	if len(lines) != 2 || lines[1].Symbol != "000660" {
		t.Fatalf("Unexpected entries %+v", lines)
	}
	if lines[0].Time != "2024-03-15 01:00:00" {
		t.Errorf("Expected KST timestamp, got %s", lines[0].Time)
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	j := New(dir, kst)
	j.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, kst) }
	if err := j.AppendAnalysis(AnalysisEntry{Date: "2024-03-01", Score: 0.5, Summary: "old"}); err != nil {
		t.Fatal(err)
	}
	j.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, kst) }
	if err := j.AppendAnalysis(AnalysisEntry{Date: "2024-03-15", Score: 0.1}); err != nil {
		t.Fatal(err)
	}

	n, err := j.CompressOlder(7)
	if err != nil || n != 1 {
		t.Fatalf("Expected 1 file compressed, got %d (%v)", n, err)
	}

	old := filepath.Join(dir, "analysis", "2024-03-01.jsonl")
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected original file removed")
	}
	gz, err := os.Open(old + ".gz")
	if err != nil {
		t.Fatal(err)
	}
	defer gz.Close()
	r, err := gzip.NewReader(gz)
	if err != nil {
		t.Fatal(err)
	}
	var e AnalysisEntry
	if err := json.NewDecoder(r).Decode(&e); err != nil || e.Summary != "old" {
		t.Errorf("Unexpected compressed entry %+v (%v)", e, err)
	}

	if _, err := os.Stat(filepath.Join(dir, "analysis", "2024-03-15.jsonl")); err != nil {
		t.Error("Expected recent file kept")
	}
	if n, _ := j.CompressOlder(0); n != 0 {
		t.Error("Expected retention 0 to do nothing")
	}
}
