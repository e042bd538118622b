package storage

import (
	"testing"
	"time"
)

func TestDayBounds(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)
	start, end := DayBounds(time.Date(2024, 3, 15, 23, 59, 0, 0, kst))

	want := time.Date(2024, 3, 15, 0, 0, 0, 0, kst)
	if start != want.Unix() {
		t.Errorf("Expected start %v, got %v", want, time.Unix(start, 0).In(kst))
	}
	if end-start != 24*3600 {
		t.Errorf("Expected a 24h window, got %ds", end-start)
	}
}

func TestListEncoding(t *testing.T) {
	if EncodeList(nil) != "[]" {
		t.Errorf("Expected [] for nil, got %s", EncodeList(nil))
	}
	got := DecodeList(EncodeList([]string{"반도체", "은행"}))
	if len(got) != 2 || got[0] != "반도체" {
		t.Errorf("Unexpected decoded list %v", got)
	}
	if DecodeList("not json") != nil {
		t.Error("Expected nil for invalid JSON")
	}
}
