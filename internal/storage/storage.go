// Package storage holds helpers shared by the SQLite and Postgres
// repositories.
package storage

import (
	"encoding/json"
	"time"
)

// DayBounds returns [start, end) of the calendar day containing t, in t's
// location, as unix seconds.
func DayBounds(t time.Time) (int64, int64) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start.Unix(), start.AddDate(0, 0, 1).Unix()
}

// DateKey is the storage key of a market analysis.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func EncodeList(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(s)
	return string(b)
}

func DecodeList(s string) []string {
	var out []string
	if s == "" || json.Unmarshal([]byte(s), &out) != nil {
		return nil
	}
	return out
}
