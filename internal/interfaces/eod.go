package interfaces

import (
	"context"
	"time"
)

// EodSummarizer writes the end-of-day summary of a day's signals. An empty
// path means there was nothing to summarize.
type EodSummarizer interface {
	SummarizeDay(ctx context.Context, t time.Time) (csvPath string, err error)
}
