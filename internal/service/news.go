package service

import (
	"context"
	"errors"
	"fmt"

	"stock-trader/internal/interfaces"
	"stock-trader/internal/logger"
	"stock-trader/internal/scheduler"
	"stock-trader/internal/types"
)

type NewsService struct {
	crawlers []interfaces.NewsCrawler
	store    interfaces.NewsStore
	limiter  *scheduler.RateLimiter
}

func NewNewsService(crawlers []interfaces.NewsCrawler, store interfaces.NewsStore, limiter *scheduler.RateLimiter) *NewsService {
	return &NewsService{crawlers: crawlers, store: store, limiter: limiter}
}

// Execute runs every crawler, stores what they found and returns the
// number of newly stored articles. It fails only when every crawler fails
// or the store does.
func (s *NewsService) Execute(ctx context.Context) (int, error) {
	var (
		all  []types.News
		errs []error
	)
	for _, c := range s.crawlers {
		if err := s.limiter.Wait(ctx); err != nil {
			return 0, err
		}
		news, err := c.FetchNews(ctx)
		if err != nil {
			logger.ErrorWithErr(ctx, "News crawl failed", err, "source", string(c.Source()))
			errs = append(errs, fmt.Errorf("%s: %w", c.Source(), err))
			continue
		}
		logger.Info(ctx, "News crawled", "source", string(c.Source()), "count", len(news))
		all = append(all, news...)
	}

	if len(s.crawlers) > 0 && len(errs) == len(s.crawlers) {
		return 0, errors.Join(errs...)
	}
	if len(all) == 0 {
		logger.Warn(ctx, "No news collected")
		logger.Collection(ctx, "news", 0, len(errs))
		return 0, nil
	}

	inserted, err := s.store.PutNews(ctx, all)
	if err != nil {
		return 0, fmt.Errorf("store news: %w", err)
	}
	logger.Collection(ctx, "news", len(s.crawlers)-len(errs), len(errs), "fetched", len(all), "inserted", inserted)
	return inserted, nil
}
