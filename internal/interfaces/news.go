package interfaces

import (
	"context"

	"stock-trader/internal/types"
)

// NewsCrawler collects articles from one news source.
type NewsCrawler interface {
	Source() types.NewsSource
	FetchNews(ctx context.Context) ([]types.News, error)
}
